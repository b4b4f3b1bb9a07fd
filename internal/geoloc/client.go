// Package geoloc resolves Wi-Fi/GSM scan data into coordinates
// through an external geolocation HTTP API (Google geolocation wire
// format).
package geoloc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"zxtrack/internal/protocol/zx303"
)

const defaultEndpoint = "https://www.googleapis.com/geolocation/v1/geolocate"

// Result is a resolved position with its accuracy radius in meters.
type Result struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Resolver turns scan data into coordinates. The rectifier depends on
// this interface so tests can substitute a fake.
type Resolver interface {
	Resolve(ctx context.Context, mcc uint16, mnc byte, cells []zx303.GsmCell, aps []zx303.WifiAP) (Result, error)
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient builds a client for the given API key. An empty endpoint
// selects the Google geolocation service.
func NewClient(apiKey, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

type lookupRequest struct {
	HomeMobileCountryCode uint16        `json:"homeMobileCountryCode"`
	HomeMobileNetworkCode byte          `json:"homeMobileNetworkCode"`
	RadioType             string        `json:"radioType"`
	ConsiderIP            bool          `json:"considerIp"`
	CellTowers            []cellTower   `json:"cellTowers"`
	WifiAccessPoints      []accessPoint `json:"wifiAccessPoints"`
}

type cellTower struct {
	LocationAreaCode uint16 `json:"locationAreaCode"`
	CellID           uint16 `json:"cellId"`
	SignalStrength   int    `json:"signalStrength"`
}

type accessPoint struct {
	MACAddress     string `json:"macAddress"`
	SignalStrength int    `json:"signalStrength"`
}

type lookupResponse struct {
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Resolve posts the scan data and returns the resolved coordinates.
func (c *Client) Resolve(ctx context.Context, mcc uint16, mnc byte, cells []zx303.GsmCell, aps []zx303.WifiAP) (Result, error) {
	reqBody := lookupRequest{
		HomeMobileCountryCode: mcc,
		HomeMobileNetworkCode: mnc,
		RadioType:             "gsm",
		CellTowers:            make([]cellTower, 0, len(cells)),
		WifiAccessPoints:      make([]accessPoint, 0, len(aps)),
	}
	for _, cell := range cells {
		reqBody.CellTowers = append(reqBody.CellTowers, cellTower{
			LocationAreaCode: cell.LAC,
			CellID:           cell.CellID,
			SignalStrength:   cell.Signal,
		})
	}
	for _, ap := range aps {
		reqBody.WifiAccessPoints = append(reqBody.WifiAccessPoints, accessPoint{
			MACAddress:     ap.MAC,
			SignalStrength: ap.Signal,
		})
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, err
	}

	url := c.endpoint
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("geolocation response: %w", err)
	}
	if body.Error != nil {
		return Result{}, fmt.Errorf("geolocation service: %s", body.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || body.Location == nil {
		return Result{}, fmt.Errorf("geolocation service: status %d without location", resp.StatusCode)
	}
	return Result{
		Latitude:  body.Location.Lat,
		Longitude: body.Location.Lng,
		Accuracy:  body.Accuracy,
	}, nil
}
