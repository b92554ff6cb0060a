package pellet_stove

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "http://192.168.1.50", NormalizeAddress("192.168.1.50", 0))
	assert.Equal(t, "http://192.168.1.50:8080", NormalizeAddress("192.168.1.50", 8080))
	assert.Equal(t, "https://stove.local", NormalizeAddress("https://stove.local", 0))
	assert.Equal(t, "http://stove.local", NormalizeAddress("stove.local/", 0))
	assert.Equal(t, "", NormalizeAddress("  ", 0))
}

func TestFetchStatusAndSessionDerivation(t *testing.T) {
	require := require.New(t)

	var lastPinHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			lastPinHeader = r.Header.Get("X-HS-PIN")
			body, _ := io.ReadAll(r.Body)
			var payload map[string]any
			require.NoError(json.Unmarshal(body, &payload))
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprint(w, `{"prg": true, "sp_temp": 20, "meta": {"nonce": "abc123"}}`)
	}))
	defer server.Close()

	client := CreateHTTPStoveClient(server.URL, "1234", 2*time.Second, zap.NewNop())

	doc, err := client.FetchStatus()
	require.NoError(err)
	assert.Equal(t, true, doc["prg"])

	// secret = md5(nonce + md5(pin)), pin never sent raw
	err = client.SendCommand(map[string]any{"sp_temp": 21})
	require.NoError(err)
	expected := md5Hex("abc123" + md5Hex("1234"))
	assert.Equal(t, expected, lastPinHeader)
	assert.NotContains(t, lastPinHeader, "1234")
}

func TestSendCommandForcesFetchWithoutNonce(t *testing.T) {
	require := require.New(t)

	gets := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets++
			fmt.Fprint(w, `{"meta": {"nonce": "n1"}}`)
			return
		}
		require.NotEmpty(r.Header.Get("X-HS-PIN"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := CreateHTTPStoveClient(server.URL, "0000", 2*time.Second, zap.NewNop())
	require.NoError(client.SendCommand(map[string]any{"prg": false}))
	assert.Equal(t, 1, gets, "command without session must fetch first")
}

func TestFetchStatusNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := CreateHTTPStoveClient(server.URL, "1234", 2*time.Second, zap.NewNop())

	_, err := client.FetchStatus()
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, http.StatusForbidden, protoErr.StatusCode)
}

func TestFetchStatusMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{broken`)
	}))
	defer server.Close()

	client := CreateHTTPStoveClient(server.URL, "1234", 2*time.Second, zap.NewNop())
	_, err := client.FetchStatus()
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Zero(t, protoErr.StatusCode)
}

func TestFetchStatusTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := CreateHTTPStoveClient(server.URL, "1234", 50*time.Millisecond, zap.NewNop())
	_, err := client.FetchStatus()
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestSetCredentialsInvalidatesSession(t *testing.T) {
	client := CreateHTTPStoveClient("stove.local", "1234", time.Second, zap.NewNop())
	client.nonce = "n"
	client.sessionSecret = "s"

	client.SetCredentials("stove2.local", "5678")
	assert.Empty(t, client.sessionSecret)
	assert.Empty(t, client.nonce)
	assert.Equal(t, "http://stove2.local", client.Address())
}
