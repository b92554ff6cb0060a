package pellet_stove

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	statusPath    = "/status.cgi"
	pinHeaderName = "X-HS-PIN"
)

// HTTPStoveClient talks to the stove's local HTTP/JSON control API.
// Write requests are authenticated with a session secret derived from
// the stove-issued nonce: md5hex(nonce + md5hex(pin)). The raw PIN
// never crosses the wire.
type HTTPStoveClient struct {
	baseURL       string
	pin           string
	nonce         string
	sessionSecret string
	client        *http.Client
	logger        *zap.Logger
}

func CreateHTTPStoveClient(address string, pin string, timeout time.Duration, logger *zap.Logger) *HTTPStoveClient {
	return &HTTPStoveClient{
		baseURL: NormalizeAddress(address, 0),
		pin:     pin,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// NormalizeAddress turns an operator-supplied address into a full base
// URL. The unencrypted scheme is assumed unless the address already
// carries one. A port of 0 means no explicit port.
func NormalizeAddress(address string, port uint) string {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if address == "" {
		return ""
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	if port > 0 && !strings.Contains(strings.TrimPrefix(address[strings.Index(address, "://")+3:], "["), ":") {
		address = fmt.Sprintf("%s:%d", address, port)
	}
	return address
}

func (c *HTTPStoveClient) Address() string {
	return c.baseURL
}

func (c *HTTPStoveClient) SetCredentials(address string, pin string) {
	c.baseURL = NormalizeAddress(address, 0)
	c.pin = pin
	// the session secret is bound to the old PIN, force a rederive on
	// the next fetch
	c.nonce = ""
	c.sessionSecret = ""
}

func (c *HTTPStoveClient) FetchStatus() (StatusDocument, error) {
	resp, err := c.client.Get(c.baseURL + statusPath)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Cause: err}
	}

	var doc StatusDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ProtocolError{Reason: "malformed status document"}
	}

	c.refreshSession(doc)

	return doc, nil
}

func (c *HTTPStoveClient) SendCommand(payload map[string]any) error {
	if c.sessionSecret == "" {
		// no nonce observed yet, a fetch is needed to derive the
		// session secret
		if _, err := c.FetchStatus(); err != nil {
			return err
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &ProtocolError{Reason: "unencodable command payload"}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+statusPath, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "command", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(pinHeaderName, c.sessionSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: "command", Cause: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ProtocolError{StatusCode: resp.StatusCode}
	}
	return nil
}

// refreshSession rederives the session secret when the stove issues a
// new nonce. Challenge-response: secret = md5(nonce + md5(pin)).
func (c *HTTPStoveClient) refreshSession(doc StatusDocument) {
	meta, ok := doc["meta"].(map[string]any)
	if !ok {
		return
	}
	nonce, ok := meta["nonce"].(string)
	if !ok || nonce == "" || nonce == c.nonce {
		return
	}
	c.nonce = nonce
	c.sessionSecret = md5Hex(nonce + md5Hex(c.pin))
	if c.logger != nil {
		c.logger.Debug("stove session secret rederived")
	}
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ensure interface compliance
var _ StoveReader = (*HTTPStoveClient)(nil)
