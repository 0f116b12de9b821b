package gateway

import (
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bankSeriesPath は中央銀行APIの系列データ取得エンドポイント。
const bankSeriesPath = "/SieteRestWS/SieteRestWS.ashx"

// bankSeriesResponse は中央銀行APIの系列データ応答。
type bankSeriesResponse struct {
	Series struct {
		Obs []bankObservation `json:"Obs"`
	} `json:"Series"`
}

// bankObservation は系列の1観測値。値は文字列で返るためパースが必要で、
// データが無い日は"NaN"が入る。
type bankObservation struct {
	IndexDateString string `json:"indexDateString"`
	Value           string `json:"value"`
	StatusCode      string `json:"statusCode"`
}

// bankQuery は資格情報付きの中央銀行APIクエリを組み立てる。
func (s *Server) bankQuery(function string) url.Values {
	query := url.Values{}
	query.Set("user", s.bankUser)
	query.Set("pass", s.bankPass)
	query.Set("function", function)
	return query
}

// handleCurrencySearch はキーワードによる系列検索をパススルーするハンドラを返す。
func (s *Server) handleCurrencySearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		keyword := c.Query("palabra_clave")
		if keyword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "palabra_claveを指定してください"})
			return
		}

		query := s.bankQuery("SearchSeries")
		query.Set("keyword", keyword)

		resp, err := s.bank.Get(c.Request.Context(), bankSeriesPath, query)
		s.relay(c, resp, err)
	}
}

// handleCurrencyConvert は指定日の為替レートを取得し金額を換算するハンドラを返す。
// レートの取得は上流に委ね、換算の計算のみゲートウェイで行う。
func (s *Server) handleCurrencyConvert() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("codigo_serie")
		fecha := c.Query("fecha")
		monto, err := strconv.ParseFloat(c.Query("monto"), 64)
		if code == "" || fecha == "" || err != nil || monto <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "codigo_serie・fecha・monto（正の数値）を指定してください",
			})
			return
		}
		if _, err := time.Parse("2006-01-02", fecha); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fechaはYYYY-MM-DD形式で指定してください"})
			return
		}

		query := s.bankQuery("GetSeries")
		query.Set("timeseries", code)
		query.Set("firstdate", fecha)
		query.Set("lastdate", fecha)

		resp, err := s.bank.Get(c.Request.Context(), bankSeriesPath, query)
		if err != nil {
			s.relayUnavailable(c, err)
			return
		}
		if resp.StatusCode != http.StatusOK {
			c.Data(resp.StatusCode, resp.ContentType, resp.Body)
			return
		}

		var series bankSeriesResponse
		if err := json.Unmarshal(resp.Body, &series); err != nil {
			s.logger.Error("中央銀行APIの応答を解釈できない", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "上流サービスの応答を解釈できません"})
			return
		}

		rate, ok := firstRate(series)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "指定日のレートが見つかりません"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"fecha":            fecha,
			"codigo_serie":     code,
			"tipo_cambio":      rate,
			"monto_original":   monto,
			"monto_convertido": monto * rate,
		})
	}
}

// firstRate は観測値のうち最初にパース可能なレートを返す。
// 全観測値がNaNまたは空の場合はfalseを返す。
func firstRate(series bankSeriesResponse) (float64, bool) {
	for _, obs := range series.Series.Obs {
		// strconv.ParseFloatは"NaN"を受理するため明示的に除外する
		rate, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil || math.IsNaN(rate) {
			continue
		}
		return rate, true
	}
	return 0, false
}
