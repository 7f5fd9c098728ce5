// Package metrics содержит счётчики prometheus для аутентификации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoginAttempts счётчик попыток входа с исходом: success,
// invalid_credentials, throttled, unverified.
var LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "auth_login_attempts_total",
	Help: "Login attempts by outcome.",
}, []string{"outcome"})

// RegisteredUsers счётчик успешных регистраций.
var RegisteredUsers = promauto.NewCounter(prometheus.CounterOpts{
	Name: "auth_registered_users_total",
	Help: "Successfully registered users.",
})
