package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/format"
	"github.com/dalfonso89/currency-converter/internal/models"
	"github.com/dalfonso89/currency-converter/internal/service"
)

// formInput mirrors the fields of the conversion form
type formInput struct {
	Base    string `form:"base"`
	Targets string `form:"targets"`
	Amount  string `form:"amount"`
}

// pageData is rendered by the "index" template
type pageData struct {
	Base    string
	Targets string
	Amount  string
	Codes   []string
	Result  *models.ConversionResult
	Errors  []string
	Recent  []models.ConversionRecord
}

// Index renders the empty conversion form
func (handlers *Handlers) Index(context *gin.Context) {
	data := handlers.newPage(context, formInput{Base: "USD", Targets: "EUR", Amount: "1"})
	context.HTML(http.StatusOK, "index", data)
}

// SubmitForm converts the submitted form and renders the result
func (handlers *Handlers) SubmitForm(context *gin.Context) {
	var input formInput
	if err := context.ShouldBind(&input); err != nil {
		data := handlers.newPage(context, input)
		data.Errors = append(data.Errors, "Invalid form submission.")
		context.HTML(http.StatusBadRequest, "index", data)
		return
	}

	base := service.NormalizeCode(input.Base)
	targets := service.ParseCodes(input.Targets)
	if base == "" || len(targets) == 0 {
		data := handlers.newPage(context, input)
		data.Errors = append(data.Errors, "Please enter a base currency and at least one target currency.")
		context.HTML(http.StatusBadRequest, "index", data)
		return
	}

	amount, err := service.ParseAmount(input.Amount)
	if err != nil {
		data := handlers.newPage(context, input)
		data.Errors = append(data.Errors, format.Sentence(err.Error()))
		context.HTML(http.StatusBadRequest, "index", data)
		return
	}

	result, err := handlers.converter.Convert(context.Request.Context(), base, targets, amount)

	data := handlers.newPage(context, input)
	if len(result.InvalidTargets) > 0 {
		data.Errors = append(data.Errors, "Invalid target currency code(s): "+strings.Join(result.InvalidTargets, ", "))
	}
	switch {
	case err != nil && apperrors.TypeOf(err) == apperrors.ErrorTypeInvalidCurrencyCode && len(result.InvalidTargets) > 0:
	case err != nil:
		data.Errors = append(data.Errors, "Error: "+err.Error())
	default:
		data.Result = &result
		for _, target := range result.FailedTargets {
			data.Errors = append(data.Errors, "Could not find rate for "+target)
		}
		data.Errors = append(data.Errors, result.Warnings...)
	}

	context.HTML(http.StatusOK, "index", data)
}

func (handlers *Handlers) newPage(context *gin.Context, input formInput) pageData {
	data := pageData{
		Base:    input.Base,
		Targets: input.Targets,
		Amount:  input.Amount,
		Recent:  handlers.history.Recent(),
	}

	catalog, err := handlers.converter.Catalog(context.Request.Context())
	if err != nil {
		data.Errors = append(data.Errors, "Could not retrieve currency list.")
	} else {
		data.Codes = catalog.Codes()
	}
	return data
}


const pageTemplates = `
{{define "index"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Currency Converter</title>
<style>
body { font-family: Arial, sans-serif; max-width: 28em; margin: 2em auto; }
label, input, button { display: block; margin: 0.4em 0; }
.error { color: #b00020; }
.result { font-size: 1.2em; }
</style>
</head>
<body>
<h1>Currency Converter</h1>
<form method="post" action="/convert">
<label for="base">Base Currency:</label>
<input id="base" name="base" list="codes" value="{{.Base}}">
<label for="targets">Target Currency:</label>
<input id="targets" name="targets" value="{{.Targets}}" placeholder="EUR,GBP,JPY">
<label for="amount">Amount:</label>
<input id="amount" name="amount" value="{{.Amount}}">
<datalist id="codes">{{range .Codes}}<option value="{{.}}">{{end}}</datalist>
<button type="submit">Convert</button>
</form>
{{range .Errors}}<p class="error">{{.}}</p>
{{end}}{{with .Result}}{{range .Records}}<p class="result">{{conversion .}}</p>
{{end}}{{end}}{{if .Recent}}<h2>Recent Conversions</h2>
<ol>{{range .Recent}}<li>{{entry .}}</li>{{end}}</ol>
{{end}}</body>
</html>
{{end}}`
