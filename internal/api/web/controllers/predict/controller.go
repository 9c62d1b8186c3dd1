package predict

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/forecast"
	"github.com/Alias1177/GoldPredictor/internal/format"
	"github.com/Alias1177/GoldPredictor/models"
)

const maxHistoryLimit = 100

//go:embed templates/index.html
var templatesFS embed.FS

var page = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

var errNotANumber = errors.New("must be a number")

// Forecaster is the pipeline the controller drives.
type Forecaster interface {
	Predict(ctx context.Context, f models.Features) (*models.Prediction, error)
	Rate(ctx context.Context) models.RateQuote
	History(ctx context.Context, limit int) ([]models.Prediction, error)
}

// Controller serves the form page and the JSON API.
type Controller struct {
	svc    Forecaster
	logger zerolog.Logger
}

func New(svc Forecaster) *Controller {
	return &Controller{
		svc:    svc,
		logger: log.With().Str("component", "predict_controller").Logger(),
	}
}

// RegisterRoutes implements web.Controller.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/", c.form)
	r.POST("/", c.submit)

	api := r.Group("/api/v1")
	api.POST("/predict", c.predict)
	api.GET("/rate", c.rate)
	api.GET("/history", c.history)
}

type formValues struct {
	SPX, USO, EURUSD, SLV string
}

type pageData struct {
	Form    formValues
	Result  *format.Result
	Warning string
	Error   string
}

func defaultForm() formValues {
	f := models.DefaultFeatures
	return formValues{
		SPX:    strconv.FormatFloat(f.SPX, 'f', -1, 64),
		USO:    strconv.FormatFloat(f.USO, 'f', -1, 64),
		EURUSD: strconv.FormatFloat(f.EURUSD, 'f', -1, 64),
		SLV:    strconv.FormatFloat(f.SLV, 'f', -1, 64),
	}
}

func (c *Controller) form(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, pageData{Form: defaultForm()})
}

func (c *Controller) submit(ctx *gin.Context) {
	values := formValues{
		SPX:    ctx.PostForm("spx"),
		USO:    ctx.PostForm("uso"),
		EURUSD: ctx.PostForm("eur_usd"),
		SLV:    ctx.PostForm("slv"),
	}
	data := pageData{Form: values}

	features, err := parseForm(values)
	if err == nil {
		var p *models.Prediction
		p, err = c.svc.Predict(ctx.Request.Context(), features)
		if err == nil {
			res := format.Prediction(p)
			data.Result = &res
			data.Warning = res.Warning
			c.render(ctx, http.StatusOK, data)
			return
		}
	}

	data.Error = forecast.UserMessage(err)
	c.render(ctx, statusFor(err), data)
}

func (c *Controller) render(ctx *gin.Context, code int, data pageData) {
	ctx.Render(code, render.HTML{Template: page, Name: "index.html", Data: data})
}

func parseForm(v formValues) (models.Features, error) {
	var f models.Features
	fields := []struct {
		raw string
		dst *float64
	}{
		{raw: v.SPX, dst: &f.SPX},
		{raw: v.USO, dst: &f.USO},
		{raw: v.EURUSD, dst: &f.EURUSD},
		{raw: v.SLV, dst: &f.SLV},
	}

	for i, fld := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(fld.raw), 64)
		if err != nil {
			return models.Features{}, &forecast.Error{Kind: forecast.KindInput, Field: models.FeatureNames[i], Err: errNotANumber}
		}
		*fld.dst = x
	}
	return f, nil
}

// @Summary Predict the gold price
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Market indicators"
// @Success 200 {object} PredictResponse
// @Failure 400 {object} ErrorResponse "Missing or non-finite input"
// @Failure 500 {object} ErrorResponse "Model failure"
// @Router /api/v1/predict [post]
func (c *Controller) predict(ctx *gin.Context) {
	var req PredictRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("predict bind failed")
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error(), Kind: string(forecast.KindInput)})
		return
	}

	p, err := c.svc.Predict(ctx.Request.Context(), req.Features())
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Error: forecast.UserMessage(err), Kind: string(forecast.KindOf(err))})
		return
	}
	ctx.JSON(http.StatusOK, newPredictResponse(p))
}

// @Summary Current USD to INR quote
// @Produce json
// @Success 200 {object} RateResponse
// @Router /api/v1/rate [get]
func (c *Controller) rate(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, newRateResponse(c.svc.Rate(ctx.Request.Context())))
}

// @Summary Recent predictions
// @Produce json
// @Param limit query int false "Max items (1-100)"
// @Success 200 {object} HistoryResponse
// @Failure 503 {object} ErrorResponse "Journal not configured"
// @Router /api/v1/history [get]
func (c *Controller) history(ctx *gin.Context) {
	limit := forecast.DefaultHistoryLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	list, err := c.svc.History(ctx.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, forecast.ErrJournalDisabled) {
			ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		c.logger.Error().Err(err).Msg("history failed")
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	items := make([]PredictResponse, len(list))
	for i := range list {
		items[i] = newPredictResponse(&list[i])
	}
	ctx.JSON(http.StatusOK, HistoryResponse{Items: items})
}

func statusFor(err error) int {
	if forecast.KindOf(err) == forecast.KindInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
