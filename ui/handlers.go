package ui

import (
	"net/http"

	"gobrix/app"
	"gobrix/domain/core"
	"gobrix/internal/errors"
	"gobrix/internal/gdd"
	"gobrix/internal/inference"
	"gobrix/internal/quality"
	"gobrix/internal/report"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in quality.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.AsOf.IsZero() {
		writeError(w, errors.InvalidInput("as_of is required"))
		return
	}
	p, err := a.services.Predictions.Predict(r.Context(), in)
	if err != nil {
		a.logger.Debug("predict %s/%s: %v", in.CultivarID, in.RegionID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type batchRequest struct {
	Inputs []quality.Input `json:"inputs"`
}

type batchResponse struct {
	Items []app.BatchItem `json:"items"`
}

func (a *App) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Inputs) == 0 {
		writeError(w, errors.InvalidInput("inputs must not be empty"))
		return
	}
	items, err := a.services.Batch.Predict(r.Context(), req.Inputs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Items: items})
}

func (a *App) handleInfer(w http.ResponseWriter, r *http.Request) {
	var signals inference.Signals
	if err := decodeJSON(r, &signals); err != nil {
		writeError(w, err)
		return
	}
	out, err := a.services.Inference.Infer(r.Context(), signals)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReport renders an HTML report for the prediction described by the query.
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asOf, err := parseDate("as_of", q.Get("as_of"))
	if err != nil {
		writeError(w, err)
		return
	}
	currentGDD, err := parseOptionalFloat("current_gdd", q.Get("current_gdd"))
	if err != nil {
		writeError(w, err)
		return
	}
	in := quality.Input{
		CultivarID:  core.CultivarID(q.Get("cultivar_id")),
		RegionID:    core.RegionID(q.Get("region_id")),
		RootstockID: core.RootstockID(q.Get("rootstock_id")),
		AsOf:        asOf,
		CurrentGDD:  currentGDD,
	}

	p, err := a.services.Predictions.Predict(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	body := report.HTML(report.Input{
		Result:       p.Result,
		RawScore:     p.RawScore,
		Calibration:  &p.Calibration,
		Distribution: &p.Distribution,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (a *App) handleRecordMeasurement(w http.ResponseWriter, r *http.Request) {
	var m app.MeasurementInput
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, err)
		return
	}
	rec, err := a.services.Calibration.RecordMeasurement(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (a *App) handleGDDVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.services.GDD.Registry().Versions())
}

func (a *App) handleGDDAccumulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseDate("to", q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	acc, err := a.services.GDD.Accumulate(r.Context(),
		core.CultivarID(q.Get("cultivar_id")), core.RegionID(q.Get("region_id")),
		from, to, gdd.Version(q.Get("version")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}
