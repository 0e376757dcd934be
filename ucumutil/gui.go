/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package ucumutil

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// guiAddress is where StartWebServer serves the command form.
const guiAddress = "localhost:7171"

// StartWebServer serves a browser form for the command tree and opens
// it.
func StartWebServer() {
	if err := setConfig(); err != nil {
		logrus.WithError(err).Warn("ucum: ignoring configuration file")
	}

	http.HandleFunc("/setConfig", func(w http.ResponseWriter, r *http.Request) {
		Root.Flags().Set("config", r.FormValue("config"))
		if err := setConfig(); err != nil {
			http.Error(w, err.Error(), http.StatusNoContent)
			return
		}
		config := make(map[string]interface{})
		for _, option := range options {
			config[option.name] = Cfg.Get(option.name)
		}
		if err := json.NewEncoder(w).Encode(config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	for _, cmd := range []*cobra.Command{Root, versionCmd, parseCmd, formatCmd, convertCmd, serveCmd} {
		cmd.SilenceUsage = true // Usage messages clutter the form.
	}

	output := template.Must(template.New("").Parse(guiTemplate))
	server := gobra.Server{Root: Root, ServerAddress: guiAddress, AllowCORS: false, HTML: output}
	logrus.Infof("ucum: serving the command form at http://%s", guiAddress)
	if err := open.Run("http://" + guiAddress); err != nil {
		logrus.Infof("ucum: please visit http://%s", guiAddress)
	}
	server.Start()
}

const guiTemplate = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>ucum</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
	</style>
</head>
<body>
<div class="container">
	<h1>ucum</h1>
	<p>Parse, format and convert units of measure.</p>
	<div>
		{{.}}
	</div>
</div>
</body>
</html>`
