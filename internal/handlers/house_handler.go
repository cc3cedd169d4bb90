package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

// HouseHandler handles listing endpoints for visitors, tenants and landlords
type HouseHandler struct {
	base
}

// NewHouseHandler creates a new house handler
func NewHouseHandler(spaces *Workspaces, logger *logrus.Logger) *HouseHandler {
	return &HouseHandler{base{spaces: spaces, logger: logger}}
}

// parseFilter reads browse filters from the query string
func parseFilter(c *gin.Context) (models.HouseFilter, error) {
	verrs := validation.Errors{}
	filter := models.HouseFilter{
		City:      c.Query("city"),
		Type:      c.Query("type"),
		Furnished: c.Query("furnished"),
		Search:    c.Query("q"),
	}

	parseRent := func(field string) *decimal.Decimal {
		raw := strings.TrimSpace(c.Query(field))
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			verrs.Add(field, "Enter a valid amount")
			return nil
		}
		return &d
	}
	filter.MinRent = parseRent("minRent")
	filter.MaxRent = parseRent("maxRent")

	if raw := c.Query("beds"); raw != "" {
		beds, err := strconv.Atoi(raw)
		if err != nil || beds < 0 {
			verrs.Add("beds", "Enter a valid number of bedrooms")
		}
		filter.Beds = beds
	}

	return filter, verrs.Err()
}

// Browse handles GET /houses and GET /tenant/browse
func (h *HouseHandler) Browse(c *gin.Context) {
	_, w := h.space(c)

	filter, err := parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	houses, err := w.Listings().Browse(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"houses": houses})
}

// Detail handles GET /houses/:id
func (h *HouseHandler) Detail(c *gin.Context) {
	_, w := h.space(c)

	house, err := w.Listings().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"house": house})
}

// Dashboard handles GET /landlord/dashboard
func (h *HouseHandler) Dashboard(c *gin.Context) {
	ws, w := h.space(c)
	user := ws.Store.User()

	resp := gin.H{
		"user":             user,
		"verified":         user.Verified(),
		"hasPayoutAccount": user.HasPayoutAccount(),
	}

	houses, err := w.Listings().Mine(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	counts := map[models.HouseStatus]int{}
	for _, house := range houses {
		counts[house.Status]++
	}
	resp["houses"] = houses
	resp["counts"] = counts
	c.JSON(http.StatusOK, resp)
}

// Mine handles GET /landlord/houses
func (h *HouseHandler) Mine(c *gin.Context) {
	_, w := h.space(c)

	houses, err := w.Listings().Mine(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"houses": houses})
}

// Create handles POST /landlord/houses
func (h *HouseHandler) Create(c *gin.Context) {
	_, w := h.space(c)

	var in models.HouseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidBody(c)
		return
	}

	house, err := w.Listings().Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"house": house})
}

// Update handles PUT /landlord/houses/:id
func (h *HouseHandler) Update(c *gin.Context) {
	_, w := h.space(c)

	var in models.HouseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidBody(c)
		return
	}

	house, err := w.Listings().Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"house": house})
}

// Delete handles DELETE /landlord/houses/:id
func (h *HouseHandler) Delete(c *gin.Context) {
	_, w := h.space(c)

	if err := w.Listings().Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImages handles POST /landlord/uploads/images (multipart field "images")
func (h *HouseHandler) UploadImages(c *gin.Context) {
	_, w := h.space(c)

	files, err := formFiles(c, "images")
	if err != nil {
		h.fail(c, err)
		return
	}

	urls, err := w.Listings().UploadImages(c.Request.Context(), files)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

// UploadElectricityBill handles POST /landlord/uploads/electricity-bill (multipart field "file")
func (h *HouseHandler) UploadElectricityBill(c *gin.Context) {
	_, w := h.space(c)

	file, err := formFile(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}

	up, err := w.Listings().UploadElectricityBill(c.Request.Context(), file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, up)
}
