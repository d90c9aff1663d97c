package http

import (
	"errors"
	"net/http"

	"golang-stock-alerts/internal/alerts/service"
	"golang-stock-alerts/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PriceHandler handles HTTP requests for latest prices.
type PriceHandler struct {
	priceService service.PriceService
	logger       *logger.Logger
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(priceService service.PriceService, logger *logger.Logger) *PriceHandler {
	return &PriceHandler{priceService: priceService, logger: logger}
}

// RegisterRoutes registers the price routes to the Echo group.
func (h *PriceHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:symbol/latest", h.GetLatestPrice)
}

// GetLatestPrice godoc
// @Summary Get the latest price for a symbol
// @Description Most recent quote seen for one symbol of the universe
// @Tags prices
// @Produce  json
// @Param   symbol  path    string true    "Stock symbol"
// @Success 200 {object} dto.LatestPrice
// @Failure 404 {object} dto.ErrorResponse
// @Router /prices/{symbol}/latest [get]
func (h *PriceHandler) GetLatestPrice(c echo.Context) error {
	symbol := c.Param("symbol")

	latest, err := h.priceService.GetLatestPrice(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSymbol) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No price recorded yet"})
		}
		h.logger.Error("Failed to get latest price", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get latest price"})
	}

	return c.JSON(http.StatusOK, latest)
}
