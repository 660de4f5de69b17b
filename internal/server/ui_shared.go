package server

const uiSharedJS = `function escapeHtml(s) {
  return (s || '').replace(/[&<>"']/g, c => ({ '&': '&amp;', '<': '&lt;', '>': '&gt;', '"': '&quot;', "'": '&#39;' }[c]));
}

function normalizedBuildStatus(status) {
  return String(status || '').trim().toLowerCase();
}

function buildStatusClass(status) {
  const normalized = normalizedBuildStatus(status);
  switch (normalized) {
    case 'success':
    case 'warning':
    case 'error':
    case 'none':
      return 'status-' + normalized;
    default:
      return 'status-none';
  }
}

function ageClass(bucket) {
  const value = Number(bucket);
  if (!Number.isFinite(value) || value < 0) return 'age-0';
  return 'age-' + Math.min(5, Math.floor(value));
}

function clampProgress(progress) {
  const value = Number(progress);
  if (!Number.isFinite(value) || value < 0) return 0;
  return Math.min(100, Math.floor(value));
}

function formatTimestamp(ts) {
  if (!ts) return '';
  const d = new Date(ts);
  if (Number.isNaN(d.getTime()) || d.getTime() <= 0) return '';
  return d.toLocaleString(undefined, {
    weekday: 'short',
    day: '2-digit',
    month: 'short',
    hour: '2-digit',
    minute: '2-digit',
    hour12: false,
  });
}
`
