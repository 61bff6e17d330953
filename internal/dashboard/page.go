package dashboard

import "html/template"

type pageData struct {
	Wallets   int
	Query     string
	Lookup    *LookupResponse
	Tiers     []RiskTier
	HasImage  bool
	ScoreName string
}

var pageFuncs = template.FuncMap{
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
}

var pageTemplate = template.Must(template.New("page").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Wallet Credit Scores</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 10px; }
</style>
</head>
<body>
<h1>Wallet Credit Scores</h1>
<p>{{.Wallets}} wallets</p>

<h2>Score distribution</h2>
{{if .HasImage}}<img src="/distribution.png" alt="{{.ScoreName}} histogram">{{else}}<p>No scores loaded.</p>{{end}}

<h2>Risk breakdown</h2>
<table>
<tr><th>Risk category</th><th>Wallets</th></tr>
{{range .Tiers}}<tr><td>{{.Category}}</td><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>Lookup</h2>
<form method="get" action="/">
<input type="text" name="name" value="{{.Query}}" placeholder="User_1">
<button type="submit">Search</button>
</form>
{{with .Lookup}}{{if .Found}}
<table>
<tr><th>Name</th><td>{{.Name}}</td></tr>
<tr><th>Wallet</th><td>{{.Wallet}}</td></tr>
<tr><th>Score</th><td>{{printf "%.2f" (deref .Score)}}</td></tr>
<tr><th>Risk category</th><td>{{.RiskCategory}}</td></tr>
</table>
{{else}}<p>{{.Notice}}</p>{{end}}{{end}}
</body>
</html>
`))
