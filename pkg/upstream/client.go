package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout は上流サービス呼び出しの既定のタイムアウト。
const DefaultTimeout = 10 * time.Second

// Client は外部サービスへのパススルー呼び出しを行うHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
	// header は全リクエストに付与する固定ヘッダー。
	header http.Header
}

// New は新しい上流サービス用HTTPクライアントを生成する。
// timeoutに0以下を指定した場合はDefaultTimeoutを使用する。
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		header:     make(http.Header),
	}
}

// SetHeader は全リクエストに付与する固定ヘッダーを設定する。
// サービスレベルの資格情報（x-authenticationやAuthorization）の付与に使う。
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// Response は上流サービスからの応答。
type Response struct {
	// StatusCode は上流が返したHTTPステータスコード。
	StatusCode int
	// ContentType は応答のContent-Typeヘッダー。
	ContentType string
	// Body は応答ボディ。
	Body []byte
}

// Do は上流サービスへリクエストを送信する。
// 上流が応答を返した場合はステータスコードに関わらずResponseを返す。
// エラーを返すのはネットワーク障害・タイムアウト等で上流に到達できない場合のみ。
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("上流サービスへの接続に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("応答ボディの読み取りに失敗: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        respBody,
	}, nil
}

// Get は指定パスにGETリクエストを送信する。
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
	}
	return c.Do(ctx, http.MethodPost, path, nil, bytes.NewReader(jsonBody))
}
