package openapi

import (
	"bytes"
	"strings"
	"text/template"
)

// CodeSample is one entry of an operation's x-codeSamples list.
type CodeSample struct {
	Lang   string `json:"lang"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

type sampleTemplate struct {
	lang, label string
	tmpl        *template.Template
}

type sampleData struct {
	URL         string
	Method      string // as written in the spec, lower case
	MethodUpper string
}

func mustSample(lang, label, text string) sampleTemplate {
	return sampleTemplate{lang: lang, label: label, tmpl: template.Must(template.New(lang).Parse(text))}
}

var sampleTemplates = []sampleTemplate{
	mustSample("curl", "cURL", `curl -X {{.MethodUpper}} "{{.URL}}" \
  -H "Authorization: Bearer YOUR_API_KEY" \
  -H "Content-Type: application/json" \
  -d '{
    "example": "value"
  }'`),
	mustSample("javascript", "JavaScript (fetch)", `fetch("{{.URL}}", {
  method: "{{.MethodUpper}}",
  headers: {
    "Authorization": "Bearer YOUR_API_KEY",
    "Content-Type": "application/json"
  },
  body: JSON.stringify({
    example: "value"
  })
})
  .then(response => response.json())
  .then(data => console.log(data))
  .catch(error => console.error(error));`),
	mustSample("python", "Python", `import requests

url = "{{.URL}}"
headers = {
    "Authorization": "Bearer YOUR_API_KEY",
    "Content-Type": "application/json"
}
data = {
    "example": "value"
}

response = requests.{{.Method}}(url, headers=headers, json=data)
print(response.json())`),
	mustSample("go", "Go", `package main

import (
    "bytes"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
)

func main() {
    url := "{{.URL}}"

    body := map[string]string{
        "example": "value",
    }

    jsonData, _ := json.Marshal(body)

    req, _ := http.NewRequest("{{.MethodUpper}}", url, bytes.NewBuffer(jsonData))
    req.Header.Set("Authorization", "Bearer YOUR_API_KEY")
    req.Header.Set("Content-Type", "application/json")

    client := &http.Client{}
    resp, err := client.Do(req)
    if err != nil {
        panic(err)
    }
    defer resp.Body.Close()

    responseBody, _ := io.ReadAll(resp.Body)
    fmt.Println(string(responseBody))
}`),
}

// CodeSamples returns request samples for method on path, in cURL,
// JavaScript, Python, Go order.
func CodeSamples(baseURL, path, method string) ([]CodeSample, error) {
	data := sampleData{
		URL:         baseURL + path,
		Method:      method,
		MethodUpper: strings.ToUpper(method),
	}
	out := make([]CodeSample, 0, len(sampleTemplates))
	for _, st := range sampleTemplates {
		var buf bytes.Buffer
		if err := st.tmpl.Execute(&buf, data); err != nil {
			return nil, err
		}
		out = append(out, CodeSample{Lang: st.lang, Label: st.label, Source: buf.String()})
	}
	return out, nil
}
