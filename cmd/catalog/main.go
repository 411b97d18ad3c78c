package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ResolvedItemResponse is the priced view of a menu item, modifiers included.
type ResolvedItemResponse struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Available  bool   `json:"available"`
}

// RecipeLineResponse is one per-unit ingredient requirement of a menu item.
type RecipeLineResponse struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	CatalogID string    `json:"catalog_id"`
	Timestamp time.Time `json:"timestamp"`
}

type menuItem struct {
	Name      string
	UnitPrice int64
	Recipe    []RecipeLineResponse
}

// MockCatalog simulates the menu and recipe authority with a small fixed
// menu, optional random unavailability and simulated lookup latency.
type MockCatalog struct {
	items           map[int64]menuItem
	modifiers       map[int64]int64 // modifier id -> price delta
	unavailableRate float64
	minDelay        time.Duration
	maxDelay        time.Duration
	catalogID       string
	rng             *rand.Rand
}

func NewMockCatalog(unavailableRate float64, minDelay, maxDelay time.Duration) *MockCatalog {
	return &MockCatalog{
		items: map[int64]menuItem{
			10: {Name: "Spaghetti Carbonara", UnitPrice: 5400, Recipe: []RecipeLineResponse{
				{IngredientID: 1, Quantity: 0.15},
				{IngredientID: 2, Quantity: 2},
				{IngredientID: 3, Quantity: 0.05},
			}},
			11: {Name: "Margherita Pizza", UnitPrice: 4800, Recipe: []RecipeLineResponse{
				{IngredientID: 4, Quantity: 0.25},
				{IngredientID: 5, Quantity: 0.12},
			}},
			12: {Name: "Caesar Salad", UnitPrice: 3600, Recipe: []RecipeLineResponse{
				{IngredientID: 6, Quantity: 0.2},
				{IngredientID: 2, Quantity: 1},
			}},
			13: {Name: "Tiramisu", UnitPrice: 2800, Recipe: []RecipeLineResponse{
				{IngredientID: 7, Quantity: 0.1},
			}},
			14: {Name: "Espresso", UnitPrice: 900, Recipe: nil},
		},
		modifiers: map[int64]int64{
			3: 400, // extra cheese
			5: 600, // double portion
			7: 0,   // no onions
		},
		unavailableRate: unavailableRate,
		minDelay:        minDelay,
		maxDelay:        maxDelay,
		catalogID:       "MOCK_CATALOG_" + uuid.New().String()[:8],
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockCatalog) resolve(menuItemID int64, modifierIDs []int64) (*ResolvedItemResponse, bool) {
	item, ok := m.items[menuItemID]
	if !ok {
		return nil, false
	}

	price := item.UnitPrice
	for _, id := range modifierIDs {
		price += m.modifiers[id]
	}

	return &ResolvedItemResponse{
		MenuItemID: menuItemID,
		Name:       item.Name,
		UnitPrice:  price,
		Available:  m.rng.Float64() >= m.unavailableRate,
	}, true
}

func (m *MockCatalog) recipe(menuItemID int64) ([]RecipeLineResponse, bool) {
	item, ok := m.items[menuItemID]
	if !ok {
		return nil, false
	}
	if item.Recipe == nil {
		return []RecipeLineResponse{}, true
	}
	return item.Recipe, true
}

func (m *MockCatalog) randomDelay() time.Duration {
	if m.maxDelay <= m.minDelay {
		return m.minDelay
	}
	delta := m.maxDelay - m.minDelay
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

// Handler struct holds the mock catalog and routes
type Handler struct {
	catalog *MockCatalog
}

func NewHandler(catalog *MockCatalog) *Handler {
	return &Handler{catalog: catalog}
}

// ResolveItem prices a menu item with its modifiers
func (h *Handler) ResolveItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu item id"})
		return
	}

	var modifierIDs []int64
	if raw := c.Query("modifier_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if mid, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				modifierIDs = append(modifierIDs, mid)
			}
		}
	}

	time.Sleep(h.catalog.randomDelay())

	item, ok := h.catalog.resolve(id, modifierIDs)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}

	log.Info().
		Int64("menu_item_id", id).
		Str("tenant_id", c.Query("tenant_id")).
		Int64("unit_price", item.UnitPrice).
		Bool("available", item.Available).
		Msg("Resolved menu item")

	c.JSON(http.StatusOK, item)
}

// GetRecipe returns the per-unit ingredient requirements of a menu item
func (h *Handler) GetRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu item id"})
		return
	}

	time.Sleep(h.catalog.randomDelay())

	lines, ok := h.catalog.recipe(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}

	c.JSON(http.StatusOK, lines)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		CatalogID: h.catalog.catalogID,
		Timestamp: time.Now(),
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/menu-items/:id", handler.ResolveItem)
		v1.GET("/menu-items/:id/recipe", handler.GetRecipe)
		v1.GET("/health", handler.HealthCheck)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8090")
	unavailableRate := getEnvFloat("UNAVAILABLE_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 5*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 50*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("unavailable_rate", unavailableRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Catalog")

	catalog := NewMockCatalog(unavailableRate, minDelay, maxDelay)
	handler := NewHandler(catalog)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
