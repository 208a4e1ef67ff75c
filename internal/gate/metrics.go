package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomePass     = "pass"
	outcomeRedirect = "redirect"
	outcomeDeny     = "deny"
)

var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mobmail_gate_decisions_total",
	Help: "Gatekeeper outcomes per inbound request",
}, []string{"outcome"})
