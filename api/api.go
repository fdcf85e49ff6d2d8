package api

import (
	"errors"
	"fmt"
	"fundsim/internal/app"
	"fundsim/internal/domain"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ApiHandler is thin glue over the core engines: resolvers translate
// JSON to domain values and back, nothing more.
type ApiHandler struct {
	SimulationHandler app.SimulationHandler
}

func (m ApiHandler) StartApi(port int) error {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to fundsim"})
	})
	router.POST("/simulate", m.simulate)
	router.POST("/metrics", m.metrics)

	return router.Run(fmt.Sprintf(":%d", port))
}

// configuration and insufficient-data failures are the caller's fault
func returnErrorJson(err error, c *gin.Context) {
	code := 500
	var configurationErr domain.ConfigurationError
	var insufficientErr domain.InsufficientDataError
	if errors.As(err, &configurationErr) || errors.As(err, &insufficientErr) {
		code = 400
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}
