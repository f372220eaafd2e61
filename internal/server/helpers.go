package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/betbot/custodygw/internal/domain"
)

// urlParam 读取 wrap 注入的路径参数
func urlParam(r *http.Request, key string) string {
	m, _ := r.Context().Value(paramsKey).(map[string]string)
	return m[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeFailure 业务失败统一 404；仅档案类接口上游 domain 列表不可用时返回 502
func writeFailure(w http.ResponseWriter, err error, upstreamAware bool) {
	status := http.StatusNotFound
	if upstreamAware && errors.Is(err, domain.ErrUpstream) {
		status = http.StatusBadGateway
	}
	httpLog.WithError(err).Debugf("request failed: status=%d", status)
	writeJSON(w, status, map[string]any{"error": err.Error(), "kind": domain.ErrorKind(err)})
}

// writeResult result=false 时返回 404
func writeResult(w http.ResponseWriter, res domain.RequestResult) {
	status := http.StatusOK
	if !res.Result {
		status = http.StatusNotFound
	}
	writeJSON(w, status, res)
}
