package service

import (
	"strconv"
	"time"

	"booking-router/core/metrics"

	"golang.org/x/oauth2"
)

func observeOAuth(provider, op string, started time.Time, err error) {
	metrics.ObserveProviderCall(provider, op, started, err)
}

// expiresIn recovers the raw lifetime in seconds; the oauth2 package only
// exposes an absolute expiry.
func expiresIn(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	return int64(time.Until(tok.Expiry).Seconds())
}

func extraString(tok *oauth2.Token, key string) string {
	if v, ok := tok.Extra(key).(string); ok {
		return v
	}
	return ""
}
