package service

import "github.com/prometheus/client_golang/prometheus"

var (
	registrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Count of successful user registrations",
	})
	loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "user_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})
)

func init() { prometheus.MustRegister(registrationsTotal, loginsTotal) }
