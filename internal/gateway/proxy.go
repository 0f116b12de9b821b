package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiroto/storegate/pkg/upstream"
)

// handleCommerceProxy は商品APIへの単純なパススルーを行うハンドラを返す。
// クエリパラメータはそのまま上流に転送する。
func (s *Server) handleCommerceProxy(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.commerce.Do(c.Request.Context(), c.Request.Method, path, c.Request.URL.Query(), nil)
		s.relay(c, resp, err)
	}
}

// handleCommerceProxyWithParam はURLパラメータを含むパススルーハンドラを返す。
func (s *Server) handleCommerceProxyWithParam(pathPrefix, paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := pathPrefix + c.Param(paramName)
		resp, err := s.commerce.Do(c.Request.Context(), c.Request.Method, path, c.Request.URL.Query(), nil)
		s.relay(c, resp, err)
	}
}

// handleRegisterSale は商品の販売数量を上流に登録するハンドラを返す。
// cantidadは正の整数でなければならない。
func (s *Server) handleRegisterSale() gin.HandlerFunc {
	return func(c *gin.Context) {
		cantidad, err := strconv.Atoi(c.Query("cantidad"))
		if err != nil || cantidad <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "cantidadには正の整数を指定してください",
			})
			return
		}

		query := url.Values{}
		query.Set("cantidad", strconv.Itoa(cantidad))
		path := "/data/articulos/venta/" + c.Param("id")

		resp, err := s.commerce.Do(c.Request.Context(), http.MethodPut, path, query, nil)
		if err != nil {
			s.relayUnavailable(c, err)
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.Data(resp.StatusCode, resp.ContentType, resp.Body)
			return
		}

		c.JSON(http.StatusOK, gin.H{"mensaje": "venta registrada correctamente"})
	}
}

// orderRequest は販売注文作成リクエストのJSON構造。
type orderRequest struct {
	// IDArticulo は注文対象の商品ID。
	IDArticulo string `json:"idArticulo" binding:"required"`
	// Cantidad は注文数量。
	Cantidad int `json:"cantidad" binding:"required,gt=0"`
	// IDSucursal は注文元の支店ID。
	IDSucursal string `json:"idSucursal" binding:"required"`
	// IDVendedor は担当販売員のID。
	IDVendedor int `json:"idVendedor" binding:"required"`
}

// handleCreateOrder は販売注文を上流に作成するハンドラを返す。
func (s *Server) handleCreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		resp, err := s.commerce.PostJSON(c.Request.Context(), "/data/pedidos/nuevo", req)
		if err != nil {
			s.relayUnavailable(c, err)
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.Data(resp.StatusCode, resp.ContentType, resp.Body)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mensaje": "pedido creado correctamente",
			"datos":   json.RawMessage(resp.Body),
		})
	}
}

// relay は上流の応答をステータスとボディごとそのまま返す。
// 上流に到達できなかった場合のみ503を返す。
func (s *Server) relay(c *gin.Context, resp *upstream.Response, err error) {
	if err != nil {
		s.relayUnavailable(c, err)
		return
	}
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}

// relayUnavailable は上流到達不能時の503応答を返す。
func (s *Server) relayUnavailable(c *gin.Context, err error) {
	s.logger.Error("上流サービスへの接続に失敗",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "上流サービスに接続できません",
	})
}
