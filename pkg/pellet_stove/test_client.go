package pellet_stove

func CreateTestStoveClient() *TestStoveClient {
	return &TestStoveClient{
		Status: TestStatusDocument(),
	}
}

// TestStoveClient is a scripted in-memory StoveReader for tests.
type TestStoveClient struct {
	Status     StatusDocument
	FetchError error
	SendError  error
	Fetches    int
	Commands   []map[string]any

	address string
}

func (c *TestStoveClient) FetchStatus() (StatusDocument, error) {
	c.Fetches++
	if c.FetchError != nil {
		return nil, c.FetchError
	}
	return c.Status, nil
}

func (c *TestStoveClient) SendCommand(payload map[string]any) error {
	if c.SendError != nil {
		return c.SendError
	}
	c.Commands = append(c.Commands, payload)
	// emulate the stove applying the command before the next poll
	for k, v := range payload {
		c.Status[k] = v
	}
	return nil
}

func (c *TestStoveClient) Address() string {
	if c.address == "" {
		return "http://stove.test"
	}
	return c.address
}

func (c *TestStoveClient) SetCredentials(address string, pin string) {
	c.address = NormalizeAddress(address, 0)
}

func TestStatusDocument() StatusDocument {
	return StatusDocument{
		"prg":            true,
		"sp_temp":        21.0,
		"is_temp":        19.4,
		"mode":           "heating",
		"zone":           []any{true, false},
		"cleaning_in":    12.0,
		"maintenance_in": 310.0,
		"consumption":    1543.2,
		"eco_mode":       false,
		"eco_editable":   true,
		"wprg":           false,
		"ignitions":      412.0,
		"on_time":        5113.0,
		"ht_char": map[string]any{
			"slope":  1.2,
			"offset": 0.5,
		},
		"meta": map[string]any{
			"sw_version":    "V60.14",
			"typ":           "HSP6",
			"sn":            "100000123",
			"nonce":         "0022emberx",
			"error":         []any{},
			"wlan_features": []any{"wps", "ap"},
		},
	}
}

// ensure interface compliance
var _ StoveReader = (*TestStoveClient)(nil)
