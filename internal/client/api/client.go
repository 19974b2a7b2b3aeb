package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chessduel/internal/client/display"
	"chessduel/internal/server/core"
)

// Client talks to the chessduel REST API, echoing each exchange to Out
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

// APIError is a non-2xx reply
type APIError struct {
	Status   int
	Response core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Error != "" {
		return fmt.Sprintf("%s (%s)", e.Response.Error, e.Response.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func New(baseURL string, out io.Writer) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 35 * time.Second, // server long-poll holds for 25s
		},
		Out: out,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.Token = token
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" {
		if c.Verbose {
			var pretty any
			json.Unmarshal([]byte(bodyStr), &pretty)
			fmt.Fprintf(c.Out, "%sRequest Body:%s\n", display.Cyan, display.Reset)
			display.PrettyPrintJSON(c.Out, pretty)
		} else {
			fmt.Fprintf(c.Out, "%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		var pretty any
		if err := json.Unmarshal(respBody, &pretty); err == nil {
			fmt.Fprintf(c.Out, "%sResponse Body:%s\n", display.Cyan, display.Reset)
			display.PrettyPrintJSON(c.Out, pretty)
		} else {
			fmt.Fprintf(c.Out, "%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(respBody))
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		json.Unmarshal(respBody, &apiErr.Response)
		if apiErr.Response.Details != "" && !c.Verbose {
			fmt.Fprintf(c.Out, "%sDetails: %s%s\n", display.Red, apiErr.Response.Details, display.Reset)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Fprintf(c.Out, "%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// API Methods

type HealthResponse struct {
	Status    string `json:"status"`
	Time      int64  `json:"time"`
	Storage   string `json:"storage"`
	Snapshots string `json:"snapshots"`
	Games     int    `json:"games"`
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

// CreatePlayer issues an identity and adopts its token for later requests
func (c *Client) CreatePlayer() (*core.PlayerResponse, error) {
	var resp core.PlayerResponse
	if err := c.doRequest("POST", "/api/v1/players", nil, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// CreateGame creates a game; a non-empty color seats the caller
func (c *Client) CreateGame(color string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest("POST", "/api/v1/games", core.CreateGameRequest{Color: color}, &resp)
	return &resp, err
}

func (c *Client) JoinGame(gameID, color string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest("POST", "/api/v1/games/"+gameID+"/players", core.JoinGameRequest{Color: color}, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest("GET", "/api/v1/games/"+gameID, nil, &resp)
	return &resp, err
}

func (c *Client) GetGameWithPoll(gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("/api/v1/games/%s?wait=true&moveCount=%d", gameID, moveCount)
	err := c.doRequest("GET", path, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(gameID string) error {
	return c.doRequest("DELETE", "/api/v1/games/"+gameID, nil, nil)
}

// MakeMove sends a move in coordinate or castling notation
func (c *Client) MakeMove(gameID, move string) (*core.MoveResponse, error) {
	var resp core.MoveResponse
	err := c.doRequest("POST", "/api/v1/games/"+gameID+"/moves", core.MoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(gameID, from string) (*core.DestinationsResponse, error) {
	var resp core.DestinationsResponse
	err := c.doRequest("GET", "/api/v1/games/"+gameID+"/moves?from="+url.QueryEscape(from), nil, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest("GET", "/api/v1/games/"+gameID+"/board", nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}
	var result any
	if err := c.doRequest(method, path, bodyData, &result); err != nil {
		return err
	}
	if result != nil && !c.Verbose {
		display.PrettyPrintJSON(c.Out, result)
	}
	return nil
}
