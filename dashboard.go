package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"agrigate/internal/crop"
	"agrigate/internal/gate"
	"agrigate/internal/types"
)

type pageData struct {
	Title      string
	Background string
	View       gate.View
	Crop       *cropView
}

// cropView is everything the crop form template reads.
type cropView struct {
	Form            crop.Submission
	Countries       []string
	CropTypes       []string
	IrrigationTypes []string
	SoilPH          crop.Range
	SoilMoisture    crop.Range
	Temperature     crop.Range
	Humidity        crop.Range
	Errors          crop.FieldErrors
	Summary         []crop.Line
	Reference       string
}

func newCropView(today time.Time) *cropView {
	return &cropView{
		Form:            crop.Defaults(today),
		Countries:       crop.Countries,
		CropTypes:       crop.CropTypes,
		IrrigationTypes: crop.IrrigationTypes,
		SoilPH:          crop.SoilPH,
		SoilMoisture:    crop.SoilMoisture,
		Temperature:     crop.Temperature,
		Humidity:        crop.Humidity,
	}
}

// handleCropSubmit echoes a crop form back under the protected surface for
// an already authenticated session.
func (a *app) handleCropSubmit(w http.ResponseWriter, r *http.Request, st types.SessionState) {
	out := a.gate.Step(st, gate.None())
	view := newCropView(a.now())

	if err := r.ParseForm(); err != nil {
		log.Printf("crop form parse failed: %v", err)
		view.Errors = crop.FieldErrors{"form": "Invalid form submission."}
		a.metrics.RecordCropSubmission(false)
		a.serveOutcome(w, out, view)
		return
	}

	sub, err := crop.Parse(r.PostForm, a.now())
	view.Form = sub
	if err != nil {
		var fieldErrs crop.FieldErrors
		if !errors.As(err, &fieldErrs) {
			fieldErrs = crop.FieldErrors{"form": err.Error()}
		}
		view.Errors = fieldErrs
		a.metrics.RecordCropSubmission(false)
		a.serveOutcome(w, out, view)
		return
	}

	view.Summary = sub.Summary()
	view.Reference = sub.Reference
	a.metrics.RecordCropSubmission(true)
	log.Printf("crop form submitted: identity=%s ref=%s country=%s crop=%s", out.Session.Identity, sub.Reference, sub.Country, sub.CropType)
	a.serveOutcome(w, out, view)
}
