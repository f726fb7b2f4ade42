// Package spoonacular はSpoonacularレシピAPIのクライアントを提供する。
package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// findByNutrientsPath は栄養素条件でレシピを検索するエンドポイント。
	findByNutrientsPath = "/recipes/findByNutrients"
	// calorieMargin は消費カロリーの前後に許容する幅。
	calorieMargin = 50
	// resultCount は1回の検索で取得するレシピ数。
	resultCount = 2
)

// Recipe はfindByNutrientsのレスポンス要素のうち利用する項目。
type Recipe struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Calories float64 `json:"calories"`
	Image    string  `json:"image"`
}

// StatusError はSpoonacularが200以外のステータスを返したことを表す。
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spoonacular returned status %d", e.StatusCode)
}

// MetricsRecorder は外部API呼び出しの計測インターフェース。
type MetricsRecorder interface {
	RecordUpstreamStatus(statusCode int)
	RecordUpstreamLatency(duration time.Duration)
}

// Config はクライアントの設定。
type Config struct {
	BaseURL         string
	APIKey          string
	MaxResponseSize int64
}

// Client はSpoonacular APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    MetricsRecorder
	config     Config
}

// NewClient はClientを生成する。metricsはnilでもよい。
func NewClient(httpClient *http.Client, logger *slog.Logger, metrics MetricsRecorder, config Config) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
		config:     config,
	}
}

// FindByCalories は消費カロリー±50kcalのレシピを最大2件取得する。
// 通信失敗、200以外のステータス、不正なJSONはエラーになる。リトライはしない。
func (c *Client) FindByCalories(ctx context.Context, calories float64) ([]Recipe, error) {
	reqURL, err := url.Parse(c.config.BaseURL + findByNutrientsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	q := reqURL.Query()
	q.Set("apiKey", c.config.APIKey)
	q.Set("minCalories", formatCalories(calories-calorieMargin))
	q.Set("maxCalories", formatCalories(calories+calorieMargin))
	q.Set("number", strconv.Itoa(resultCount))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordUpstreamLatency(time.Since(start))
	}
	if err != nil {
		// *url.ErrorのURLにはapiKeyが含まれる
		c.logger.Error("spoonacular request failed",
			slog.String("error", redact(err).Error()),
			slog.Float64("calories", calories),
		)
		return nil, fmt.Errorf("spoonacular request failed: %w", redact(err))
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordUpstreamStatus(resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("spoonacular returned error status",
			slog.Int("http_status", resp.StatusCode),
			slog.Float64("calories", calories),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize+1))
	if err != nil {
		c.logger.Error("failed to read spoonacular response",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.config.MaxResponseSize {
		c.logger.Error("spoonacular response too large",
			slog.Int64("max_bytes", c.config.MaxResponseSize),
		)
		return nil, fmt.Errorf("response exceeds %d bytes", c.config.MaxResponseSize)
	}

	var recipes []Recipe
	if err := json.Unmarshal(body, &recipes); err != nil {
		c.logger.Error("failed to parse spoonacular response",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	c.logger.Debug("spoonacular recipes fetched",
		slog.Int("count", len(recipes)),
		slog.Float64("calories", calories),
	)
	return recipes, nil
}

// formatCalories は不要な末尾の0を付けずに数値を文字列化する。
func formatCalories(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// redact は*url.ErrorからURLを取り除いた原因エラーを返す。
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
