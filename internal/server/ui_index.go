package server

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>statusci</title>
  <style>
    :root {
      --bg: #11161a;
      --bg2: #1b232a;
      --card: #222d36;
      --ink: #e8eef2;
      --muted: #90a2ad;
      --ok: #2ea35f;
      --warn: #c9972c;
      --bad: #c14953;
      --line: #31404c;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: "Avenir Next", "Segoe UI", sans-serif;
      color: var(--ink);
      background: radial-gradient(circle at 20% 0%, var(--bg2), var(--bg));
    }
    main { max-width: 1100px; margin: 24px auto; padding: 0 16px; }
    .top { display:flex; justify-content:space-between; align-items:baseline; gap:8px; flex-wrap:wrap; margin-bottom:16px; }
    .top h1 { margin:0; font-size:20px; }
    .top .sub { color: var(--muted); font-size:13px; }
    .tiles { display:flex; flex-wrap:wrap; gap:10px; }
    .tile {
      min-width: 180px;
      border-radius: 10px;
      border: 1px solid var(--line);
      padding: 10px 12px;
      background: var(--card);
      font-size: 14px;
    }
    .tile a { color: inherit; text-decoration: none; font-weight: 600; }
    .tile a:hover { text-decoration: underline; }
    .tile .meta { color: rgba(255,255,255,.75); font-size: 12px; margin-top: 4px; }
    .tile.status-success { background: var(--ok); border-color: #37b96e; }
    .tile.status-warning { background: var(--warn); border-color: #dcae45; }
    .tile.status-error { background: var(--bad); border-color: #d55f69; }
    .tile.status-none { background: #46525b; border-color: #586773; }
    .tile.status-loading { background: var(--card); color: var(--muted); }
    .tile.age-0 { opacity: 1; }
    .tile.age-1 { opacity: .92; }
    .tile.age-2 { opacity: .82; }
    .tile.age-3 { opacity: .72; }
    .tile.age-4 { opacity: .6; }
    .tile.age-5 { opacity: .48; }
    .tile.building { animation: pulse 1.6s ease-in-out infinite; }
    @keyframes pulse {
      0%, 100% { filter: brightness(1); }
      50% { filter: brightness(1.25); }
    }
    .progress { height: 5px; border-radius: 3px; background: rgba(0,0,0,.35); margin-top: 8px; overflow: hidden; }
    .progress > div { height: 100%; background: rgba(255,255,255,.85); }
    .group {
      border: 1px dashed var(--line);
      border-radius: 10px;
      padding: 10px 12px;
      min-width: 200px;
    }
    .group > .group-name { color: var(--muted); font-size: 12px; margin-bottom: 8px; }
    .group > .tiles { gap: 8px; }
    .error-note { color: #e8a1a8; }
  </style>
</head>
<body>
  <main>
    <div class="top">
      <h1>statusci</h1>
      <div class="sub" id="serverInfo"></div>
    </div>
    <div class="tiles" id="tilesRoot"></div>
  </main>

  <script src="/ui/shared.js"></script>
  <script>
    let renderInFlight = false;

    function tileHTML(snap) {
      if (snap.kind === 'multi') {
        const children = (snap.children || []).map(tileHTML).join('');
        return '<div class="group">' +
          '<div class="group-name">' + escapeHtml(snap.name || snap.id) + '</div>' +
          '<div class="tiles">' + children + '</div>' +
          '</div>';
      }

      if (snap.kind === 'single') {
        const classes = ['tile', buildStatusClass(snap.build_status), ageClass(snap.age_bucket)];
        if (snap.building) classes.push('building');
        const name = snap.url
          ? '<a href="' + escapeHtml(snap.url) + '" target="_blank" rel="noopener">' + escapeHtml(snap.name || snap.id) + '</a>'
          : escapeHtml(snap.name || snap.id);
        const ts = formatTimestamp(snap.timestamp_utc);
        const meta = [];
        if (ts) meta.push(ts);
        if (snap.build_count) meta.push(String(snap.build_count) + ' builds');
        let html = '<div class="' + classes.join(' ') + '">' + name;
        if (meta.length) html += '<div class="meta">' + escapeHtml(meta.join(' · ')) + '</div>';
        if (snap.building) {
          html += '<div class="progress"><div style="width:' + clampProgress(snap.progress) + '%"></div></div>';
        }
        html += '</div>';
        return html;
      }

      // loading: placeholder or error display state
      const broken = snap.status === 'error';
      return '<div class="tile status-loading' + (broken ? ' error-note' : '') + '">' +
        escapeHtml(snap.name || snap.id) +
        '<div class="meta">' + (broken ? 'unavailable' : 'loading…') + '</div>' +
        '</div>';
    }

    async function renderWidgets() {
      if (renderInFlight) return;
      renderInFlight = true;
      try {
        const res = await fetch('/api/v1/widgets');
        if (!res.ok) return;
        const data = await res.json();
        const widgets = data.widgets || [];
        document.getElementById('tilesRoot').innerHTML = widgets.map(tileHTML).join('');
      } catch (_) {
        // keep the previous render; the next cycle retries
      } finally {
        renderInFlight = false;
      }
    }

    async function loadServerInfo() {
      try {
        const res = await fetch('/api/v1/server-info');
        if (!res.ok) return;
        const info = await res.json();
        document.getElementById('serverInfo').textContent = (info.name || '') + ' ' + (info.version || '');
      } catch (_) {}
    }

    loadServerInfo();
    renderWidgets();
    setInterval(renderWidgets, 3000);
  </script>
</body>
</html>
`
