package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

func postJSON(serverURL, path string, in, out interface{}) error {
	return doJSON(http.MethodPost, serverURL, path, nil, in, out)
}

func getJSON(serverURL, path string, params map[string]string, out interface{}) error {
	return doJSON(http.MethodGet, serverURL, path, params, nil, out)
}

func deleteJSON(serverURL, path string, params map[string]string, out interface{}) error {
	return doJSON(http.MethodDelete, serverURL, path, params, nil, out)
}

// doJSON sends a request to the Seshat API and decodes the JSON response into
// out. Non-2xx responses are returned as errors carrying the server message.
func doJSON(method, serverURL, path string, params map[string]string, in, out interface{}) error {
	u := strings.TrimRight(serverURL, "/") + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
