package services

import (
	"log"

	"github.com/AfricaChange/AfricaChange/src/lib"
)

const alertTopic = "RiskAlerts"

// Alerting is fire-and-forget: a produce failure is logged and never
// rolls back the payment unit of work.
func alert(severity, message string) {
	go func() {
		if err := lib.KafkaProduceMessage("RiskAlertsProducer", alertTopic, map[string]any{
			"severity": severity,
			"message":  message,
		}); err != nil {
			log.Printf("[alerts] Error publishing %s alert: %s\n", severity, err.Error())
		}
	}()
}

func AlertCritical(message string) {
	log.Printf("[CRITICAL] %s\n", message)
	alert("critical", message)
}

func AlertWarning(message string) {
	log.Printf("[WARNING] %s\n", message)
	alert("warning", message)
}
