package dashboard

import (
	"btc-dca-dashboard/internal/alert"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strconv"
)

type priceRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

type notificationsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) ListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": s.Store.Thresholds()})
}

func (s *Server) CreateAlert(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "price is required")
		return
	}

	t, err := s.Store.Add(c.Request.Context(), *req.Price)
	if err != nil {
		s.storeError(c, err)
		return
	}
	log.Infof("Price alert %s added at %.2f", t.ID, t.Price)
	c.JSON(http.StatusCreated, t)
}

func (s *Server) UpdateAlert(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "price is required")
		return
	}

	t, err := s.Store.EditByID(c.Request.Context(), c.Param("id"), *req.Price)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) DeleteAlert(c *gin.Context) {
	if err := s.Store.RemoveByID(c.Request.Context(), c.Param("id")); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) UpdateAlertAt(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "price is required")
		return
	}

	t, err := s.Store.Edit(c.Request.Context(), index, *req.Price)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) DeleteAlertAt(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	if err := s.Store.Remove(c.Request.Context(), index); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": s.Store.NotificationsEnabled()})
}

func (s *Server) SetNotifications(c *gin.Context) {
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "enabled is required")
		return
	}
	if err := s.Store.SetNotificationsEnabled(c.Request.Context(), *req.Enabled); err != nil {
		s.storeError(c, err)
		return
	}
	log.Infof("Price alert notifications enabled: %t", *req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return index, true
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, alert.ErrInvalidPrice):
		respondError(c, http.StatusBadRequest, alert.ErrInvalidPrice.Error())
	case errors.Is(err, alert.ErrNotFound):
		respondError(c, http.StatusNotFound, alert.ErrNotFound.Error())
	default:
		log.Errorf("❌ Failed to update price alerts: %v", err)
		respondError(c, http.StatusInternalServerError, "could not save price alerts")
	}
}
