package main

import (
	"fundsim/api"
	"fundsim/internal/app"
	"fundsim/internal/logger"
	"log"
)

func main() {
	l := logger.New()

	handler := api.ApiHandler{
		SimulationHandler: app.SimulationHandler{Log: l},
	}

	if err := handler.StartApi(3009); err != nil {
		log.Fatal(err)
	}
}
