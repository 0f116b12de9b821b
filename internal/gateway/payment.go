package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// paymentIntentRequest は支払いインテント作成リクエストのJSON構造。
type paymentIntentRequest struct {
	// Monto は最小通貨単位での金額。
	Monto int64 `json:"monto" binding:"required,gt=0"`
	// Moneda はISO 4217の通貨コード。
	Moneda string `json:"moneda" binding:"required,len=3"`
	// Descripcion は任意の摘要。
	Descripcion string `json:"descripcion"`
}

// handleCreatePaymentIntent は決済APIに支払いインテントを作成するハンドラを返す。
// リクエストの形だけ検証し、作成結果は上流の応答をそのまま返す。
func (s *Server) handleCreatePaymentIntent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		resp, err := s.payment.PostJSON(c.Request.Context(), "/v1/payment_intents", req)
		s.relay(c, resp, err)
	}
}
