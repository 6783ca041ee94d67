// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
)

var testInfo = deviceInfo{Interface: "i2c", ProductType: "00080000", Serial: "9D8C3F0E1A2B3C4D", Firmware: "2.2", Format: "float"}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	l := &latest{}
	r := newRouter(reg, l, testInfo)

	if w := get(t, r, "/api/v1/measurement"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("measurement before first read returned %d", w.Code)
	}

	for _, s := range []sink{m, l} {
		if err := s.publish(context.Background(), sample, testTime); err != nil {
			t.Fatal(err)
		}
	}

	w := get(t, r, "/api/v1/measurement")
	if w.Code != http.StatusOK {
		t.Fatalf("measurement returned %d", w.Code)
	}
	var got reading
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Sensor != testInfo.Serial || !got.Timestamp.Equal(testTime) {
		t.Errorf("unexpected reading %#v", got)
	}
	if len(got.Fields) != 10 || got.Fields["pm10 standard"] != 12.3 || got.Fields["tps"] != 0.5 {
		t.Errorf("unexpected fields %v", got.Fields)
	}

	w = get(t, r, "/api/v1/device")
	var info deviceInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testInfo, info); diff != "" {
		t.Errorf("device mismatch (-want +got):\n%s", diff)
	}

	w = get(t, r, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `sps30_mass_concentration_ugm3{size="pm2.5"} 14.5`) {
		t.Errorf("metrics returned %d:\n%s", w.Code, w.Body.String())
	}
}
