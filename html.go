package main

import (
	"embed"
	"html/template"

	"agrigate/internal/crop"
)

//go:embed static
var staticFiles embed.FS

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"float": crop.FormatFloat,
	"date": func(s crop.Submission, which string) string {
		if which == "harvest" {
			return s.HarvestDate.Format(crop.DateLayout)
		}
		return s.SowingDate.Format(crop.DateLayout)
	},
}).Parse(pageHTML))

const pageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="/static/app.css">
</head>
{{if .Background}}<body style="background-image: linear-gradient(rgba(10,15,25,0.5), rgba(10,15,25,0.5)), url('{{.Background}}')">
{{else}}<body style="background-image: linear-gradient(rgba(10,15,25,0.85), rgba(22,101,52,0.55))">
{{end}}
{{- if .View.IsLogin}}{{template "login" .}}{{else}}{{template "protected" .}}{{end}}
</body>
</html>
{{define "login"}}
  <div class="login-card">
    {{with .View.Login}}{{if .HasErrors}}
    <div class="alert error shake" role="alert">
      <span>&#10071;</span>
      <div>
        <div>Fix the following</div>
        <ul>{{range .Errors}}<li>{{.}}</li>{{end}}</ul>
      </div>
    </div>
    {{end}}{{end}}
    <h2>Welcome back</h2>
    <p class="muted">Sign in to continue to your dashboard</p>
    <form method="post" action="/login" novalidate>
      <label for="email">Email</label>
      <input id="email" name="email" type="email" autocomplete="username" placeholder="user@gmail.com" value="{{.View.Login.Email}}">
      {{with .View.Login.EmailError}}<div class="field-error">{{.}}</div>{{end}}
      <label for="password">Password</label>
      <input id="password" name="password" type="password" autocomplete="current-password" placeholder="Enter your password">
      {{with .View.Login.PasswordError}}<div class="field-error">{{.}}</div>{{end}}
      <button type="submit">Sign in</button>
    </form>
    <p class="muted small">Demo only. No backend connected.</p>
  </div>
{{end}}
{{define "protected"}}
  {{if .View.Protected.Chrome}}
  <div class="taskbar">
    <div class="title">&#127793; {{.Title}}</div>
    <div class="right">
      <span>{{.View.Protected.Identity}}</span>
      <form method="post" action="/logout"><button type="submit">Logout</button></form>
    </div>
  </div>
  <div class="main-content">
  {{else}}
  <div class="main-content plain">
    <div class="alert success">
      <span>&#9989;</span>
      <div>
        <div>Signed in</div>
        <div class="small">This is a frontend demo, no backend was contacted. <a href="/logout">Sign out</a></div>
      </div>
    </div>
  {{end}}
    {{template "crop" .Crop}}
  </div>
{{end}}
{{define "crop"}}
    <h1>&#127806; Interactive Crop Information Form</h1>
    {{if .Errors}}
    <div class="alert error" role="alert">
      <div>
        <div>Fix the following</div>
        <ul>{{range .Errors.Lines}}<li>{{.Label}}: {{.Value}}</li>{{end}}</ul>
      </div>
    </div>
    {{end}}
    <form method="post" action="/api/crop">
      <label for="country">Select Country</label>
      <select id="country" name="country">
        {{range .Countries}}<option{{if eq . $.Form.Country}} selected{{end}}>{{.}}</option>{{end}}
      </select>
      {{with index .Errors "country"}}<div class="field-error">{{.}}</div>{{end}}
      <label>Crop Type</label>
      <div class="radio-row">
        {{range .CropTypes}}<label><input type="radio" name="crop_type" value="{{.}}"{{if eq . $.Form.CropType}} checked{{end}}>{{.}}</label>{{end}}
      </div>
      {{with index .Errors "crop_type"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="soil_ph">Soil pH</label>
      <input id="soil_ph" name="soil_ph" type="range" min="{{float .SoilPH.Min}}" max="{{float .SoilPH.Max}}" step="{{float .SoilPH.Step}}" value="{{float .Form.SoilPH}}">
      {{with index .Errors "soil_ph"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="soil_moisture">Soil Moisture (%)</label>
      <input id="soil_moisture" name="soil_moisture" type="number" min="{{float .SoilMoisture.Min}}" max="{{float .SoilMoisture.Max}}" step="{{float .SoilMoisture.Step}}" value="{{float .Form.SoilMoisture}}">
      {{with index .Errors "soil_moisture"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="temperature">Temperature (&deg;C)</label>
      <input id="temperature" name="temperature" type="range" min="{{float .Temperature.Min}}" max="{{float .Temperature.Max}}" step="{{float .Temperature.Step}}" value="{{float .Form.Temperature}}">
      {{with index .Errors "temperature"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="humidity">Humidity (%)</label>
      <input id="humidity" name="humidity" type="number" min="{{float .Humidity.Min}}" max="{{float .Humidity.Max}}" step="{{float .Humidity.Step}}" value="{{float .Form.Humidity}}">
      {{with index .Errors "humidity"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="irrigation">Irrigation Type</label>
      <select id="irrigation" name="irrigation">
        {{range .IrrigationTypes}}<option{{if eq . $.Form.Irrigation}} selected{{end}}>{{.}}</option>{{end}}
      </select>
      {{with index .Errors "irrigation"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="fertilizer">Fertilizer Type</label>
      <input id="fertilizer" name="fertilizer" value="{{.Form.Fertilizer}}">
      {{with index .Errors "fertilizer"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="sowing_date">Sowing Date</label>
      <input id="sowing_date" name="sowing_date" type="date" value="{{date .Form "sowing"}}">
      {{with index .Errors "sowing_date"}}<div class="field-error">{{.}}</div>{{end}}
      <label for="harvest_date">Harvest Date</label>
      <input id="harvest_date" name="harvest_date" type="date" value="{{date .Form "harvest"}}">
      {{with index .Errors "harvest_date"}}<div class="field-error">{{.}}</div>{{end}}
      <p><button type="submit">Submit</button></p>
    </form>
    {{if .Summary}}
    <div class="alert success">&#9989; Form Submitted</div>
    <h3>Submitted Data:</h3>
    <dl class="summary">
      {{range .Summary}}<dt>{{.Label}}:</dt><dd>{{.Value}}</dd>{{end}}
      <dt>Reference:</dt><dd>{{.Reference}}</dd>
    </dl>
    {{end}}
{{end}}
`
