package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ScenarioForge/internal/api/middleware"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/compiler"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ScenarioForge/internal/logging"
	"github.com/GriffinCanCode/ScenarioForge/internal/shared/id"
)

// MaxBlueprintBytes bounds POST /compile bodies.
const MaxBlueprintBytes = 1 << 20

// Response headers set by Compile
const (
	HeaderScenarioID  = "X-Scenario-ID"
	HeaderDiagnostics = "X-Scenario-Diagnostics"
	HeaderMap         = "X-Scenario-Map"
)

// Handlers serves the compiler over HTTP.
type Handlers struct {
	compiler  *compiler.Compiler
	outputDir string
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// NewHandlers creates the HTTP handlers. Saved documents go to outputDir.
func NewHandlers(c *compiler.Compiler, outputDir string, logger *logging.Logger, metrics *monitoring.Metrics) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		compiler:  c,
		outputDir: outputDir,
		logger:    logger,
		metrics:   metrics,
	}
}

// Root describes the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "scenarioforge",
		"endpoints": []string{
			"POST /compile", "GET /scenarios/:id", "POST /context",
			"GET /maps", "GET /maps/:key", "GET /health", "GET /metrics",
		},
	})
}

// Health reports liveness and compile totals.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"maps":   len(h.compiler.Registry().Keys()),
		"stats":  h.metrics.Snapshot(),
	})
}

// ListMaps returns every registered map context.
func (h *Handlers) ListMaps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"maps": h.compiler.Registry().Contexts()})
}

// GetMap returns one map context by key.
func (h *Handlers) GetMap(c *gin.Context) {
	m, ok := h.compiler.Registry().Lookup(c.Param("key"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown map", "key": c.Param("key")})
		return
	}
	c.JSON(http.StatusOK, m)
}

// ContextRequest asks for the generation context of a free-text request.
type ContextRequest struct {
	Request string `json:"request" binding:"required"`
}

// ContextResponse is the resolved map, rules and prompt text.
type ContextResponse struct {
	Map    knowledge.MapContext `json:"map"`
	Rules  []knowledge.Rule     `json:"rules"`
	Prompt string               `json:"prompt"`
}

// Context resolves the map and rules the upstream generator should use.
func (h *Handlers) Context(c *gin.Context) {
	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reg := h.compiler.Registry()
	c.JSON(http.StatusOK, ContextResponse{
		Map:    reg.ResolveMap(req.Request),
		Rules:  reg.ResolveRules(req.Request),
		Prompt: reg.PromptContext(req.Request),
	})
}

// CompileResponse is the JSON form of a compile result.
type CompileResponse struct {
	ID          string                 `json:"id"`
	Map         string                 `json:"map"`
	Rules       []knowledge.Rule       `json:"rules"`
	Diagnostics []blueprint.Diagnostic `json:"diagnostics"`
	Traffic     compiler.TrafficStats  `json:"traffic"`
	Saved       string                 `json:"saved,omitempty"`
	Document    string                 `json:"document"`
}

// Compile compiles the posted blueprint. The body may be JSON, YAML or
// generator output with the JSON embedded in prose. The document is
// returned as XML unless format=json; save=true also writes it to the
// output directory.
func (h *Handlers) Compile(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBlueprintBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}
	if len(body) > MaxBlueprintBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Blueprint too large"})
		return
	}

	log := h.logger.Request(middleware.GetRequestID(c))

	raw, err := blueprint.ParseInput(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bp, diags := blueprint.Normalize(raw)

	res, err := h.compiler.Compile(c.Request.Context(), bp)
	if err != nil {
		var se *compiler.StructuralError
		if errors.As(err, &se) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":       se.Reason,
				"subject":     se.Subject,
				"diagnostics": diags,
			})
			return
		}
		log.Error("Compile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Compile failed"})
		return
	}
	diags = append(diags, res.Diagnostics...)

	sid := id.NewScenarioID()
	log = log.Scenario(sid.String(), res.Map.Key)

	var doc bytes.Buffer
	if err := scenario.Encode(&doc, res.Scenario); err != nil {
		log.Error("Encode failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode scenario"})
		return
	}

	saved := ""
	if c.Query("save") == "true" {
		saved = filepath.Join(h.outputDir, sid.FileName())
		if err := scenario.WriteDocument(saved, doc.Bytes()); err != nil {
			log.Error("Failed to save scenario", zap.String("path", saved), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scenario"})
			return
		}
		log.Info("Scenario saved", zap.String("path", saved))
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, CompileResponse{
			ID:          sid.String(),
			Map:         res.Map.Key,
			Rules:       res.Rules,
			Diagnostics: diags,
			Traffic:     res.Traffic,
			Saved:       saved,
			Document:    doc.String(),
		})
		return
	}

	header, err := sonic.MarshalString(diags)
	if err != nil {
		header = "[]"
	}
	c.Header(HeaderScenarioID, sid.String())
	c.Header(HeaderMap, res.Map.Key)
	c.Header(HeaderDiagnostics, header)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", doc.Bytes())
}

// GetScenario serves a previously saved document.
func (h *Handlers) GetScenario(c *gin.Context) {
	sid, err := id.ParseScenarioID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := os.ReadFile(filepath.Join(h.outputDir, sid.FileName()))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
			return
		}
		h.logger.Request(middleware.GetRequestID(c)).Scenario(sid.String(), "").Error("Failed to read scenario", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read scenario"})
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}
