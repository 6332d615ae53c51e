package server

import (
	"html/template"
	"net/http"

	"github.com/samaahar/podcast-gateway/internal/script"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Samaahar Podcast Generator</title>
<style>
  body { font-family: sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; }
  label { display: block; margin-top: 1rem; font-weight: bold; }
  input, select { width: 100%; padding: 0.4rem; margin-top: 0.25rem; }
  button { margin-top: 1.5rem; padding: 0.6rem 1.5rem; }
  #status { margin-top: 1.5rem; color: #555; }
  #player { margin-top: 1rem; width: 100%; display: none; }
  #transcript { margin-top: 1rem; white-space: pre-wrap; background: #f6f6f6; padding: 1rem; display: none; }
</style>
</head>
<body>
<h1>Samaahar</h1>
<p>Turn any Wikipedia topic into a Hinglish podcast.</p>
<form id="form">
  <label for="topic">Topic</label>
  <input id="topic" name="topic" placeholder="e.g. Chandrayaan-3" required>

  <label for="audience">Audience</label>
  <select id="audience" name="audience">
    {{range .Audiences}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>

  <label for="tone">Tone</label>
  <select id="tone" name="tone">
    {{range .Tones}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>

  <label for="duration">Duration</label>
  <select id="duration" name="duration_seconds">
    <option value="60">1 minute</option>
    <option value="120" selected>2 minutes</option>
    <option value="180">3 minutes</option>
    <option value="300">5 minutes</option>
  </select>

  <button type="submit">Generate podcast</button>
</form>
<div id="status"></div>
<audio id="player" controls></audio>
<pre id="transcript"></pre>
<script>
const form = document.getElementById('form');
const status = document.getElementById('status');
const player = document.getElementById('player');
const transcript = document.getElementById('transcript');

form.addEventListener('submit', async (e) => {
  e.preventDefault();
  player.style.display = 'none';
  transcript.style.display = 'none';
  status.textContent = 'Submitting...';

  const body = {
    topic: document.getElementById('topic').value,
    audience: document.getElementById('audience').value,
    tone: document.getElementById('tone').value,
    duration_seconds: parseInt(document.getElementById('duration').value, 10),
  };

  const resp = await fetch('/api/podcast', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(body),
  });
  const job = await resp.json();
  if (!resp.ok) {
    status.textContent = 'Error: ' + job.error;
    return;
  }

  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws/jobs/' + job.id);
  ws.onmessage = (msg) => {
    const event = JSON.parse(msg.data);
    if (event.stage === 'synthesize') {
      status.textContent = 'Synthesizing dialogue (' + event.turns_done + '/' + event.turns_total + ')';
    } else if (event.stage === 'failed') {
      status.textContent = 'Failed: ' + event.message;
    } else {
      status.textContent = event.message;
    }
  };
  ws.onclose = async () => {
    const jobResp = await fetch('/api/podcast/' + job.id);
    const final = await jobResp.json();
    if (final.status === 'done') {
      status.textContent = 'Ready: ' + final.article_title +
        ' (' + Math.round(final.duration_seconds) + 's, ' + final.turn_count + ' turns)';
      player.src = '/api/podcast/' + job.id + '/audio';
      player.style.display = 'block';
      if (final.transcript) {
        transcript.textContent = final.transcript;
        transcript.style.display = 'block';
      }
    }
  };
});
</script>
</body>
</html>
`))

type indexData struct {
	Audiences []script.Audience
	Tones     []script.Tone
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Audiences: script.Audiences(),
		Tones: []script.Tone{
			script.ToneCasual, script.ToneFunny, script.ToneWitty,
			script.ToneProfessional, script.ToneEducational,
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render index page")
	}
}
