package output

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>authprobe report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
.meta { color: #666; font-size: .9rem; }
.bar { display: flex; height: 10px; border-radius: 5px; overflow: hidden; margin: 1rem 0; background: #eee; }
.bar .passed { background: #2e7d32; }
.bar .failed { background: #c62828; }
.bar .skipped { background: #f9a825; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #eee; vertical-align: top; }
tr.passed td.status { color: #2e7d32; }
tr.failed td.status { color: #c62828; }
tr.skipped td.status { color: #f9a825; }
pre { margin: 0; font-size: .8rem; max-height: 16rem; overflow: auto; }
</style>
</head>
<body>
<h1>Tracker Pro API checks</h1>
<p class="meta">{{.BaseURL}} &middot; {{.Time}} &middot; {{printf "%.0f" .Duration}}ms{{if .Version}} &middot; authprobe {{.Version}}{{end}}</p>
<p>
  Total: <strong>{{.Summary.Total}}</strong> &middot;
  Passed: <strong>{{.Summary.Passed}}</strong> &middot;
  Failed: <strong>{{.Summary.Failed}}</strong> &middot;
  Skipped: <strong>{{.Summary.Skipped}}</strong> &middot;
  Success Rate: <strong>{{printf "%.1f" .Summary.SuccessRate}}%</strong>
</p>
<div class="bar">
  <div class="passed" style="width: {{printf "%.2f" .PassedPercent}}%"></div>
  <div class="failed" style="width: {{printf "%.2f" .FailedPercent}}%"></div>
  <div class="skipped" style="width: {{printf "%.2f" .SkippedPercent}}%"></div>
</div>
<table>
<thead><tr><th></th><th>Check</th><th>Request</th><th>Status</th><th>Message</th><th>Time</th></tr></thead>
<tbody>
{{range .Tests}}
<tr class="{{.StatusClass}}">
  <td class="status">{{if .Skipped}}skipped{{else if .Passed}}passed{{else}}failed{{end}}</td>
  <td>{{.Name}}</td>
  <td>{{if .Method}}{{.Method}} {{.URL}}{{end}}</td>
  <td>{{if .StatusCode}}{{.StatusCode}} (expected {{.ExpectedStatus}}){{end}}</td>
  <td>{{if .Skipped}}{{.SkipReason}}{{else}}{{.Message}}{{end}}{{if .Response}}<details><summary>response</summary><pre>{{.Response}}</pre></details>{{end}}</td>
  <td>{{printf "%.0f" .Duration}}ms</td>
</tr>
{{end}}
</tbody>
</table>
</body>
</html>
`
