package config

var DEFAULT_CONFIG_YAML = `
# cronwatchd Configuration File
# Environment: development, staging, production
# cronwatchd.yaml
app_name: "cronwatch"
environment: "production"
log_level: "info"
timezone: "UTC"       # IANA zone used for "at" and "cron" schedules

scheduler:
  enabled: true
  tick_interval: 60s
  max_jobs: 100
  job_timeout: 30s

monitor:
  enabled: true
  endpoint: "ws://127.0.0.1:18789"   # ws/wss are probed over http/https
  health_path: "/health"
  poll_interval: 5s
  timeout: 3s
  check_on_start: true
  check_now_rate: 1s
  check_now_burst: 3

executor:
  kind: "log"   # log, docker

docker:
  socket_path: "/var/run/docker.sock"
  container: ""
  shell: "sh"

store:
  driver: "file"   # none, file, sqlite
  path: "/var/lib/cronwatch/jobs.yaml"
  busy_timeout: 5s

shutdown:
  timeout: 60s

logger:
  level: "info"
  format: "json"  # or "text"
  output: "file"  # stdout, stderr, file, null
  file_path: "/var/log/cronwatchd.log"  # Auto-detected if empty
  max_size: 100   # MB
  max_backups: 10
  max_age: 30     # days
  compress: true
  timestamp_format: "2006-01-02T15:04:05.000Z"
  show_caller: false
  colors: false   # No colors in production logs
  async: true
  buffer_size: 256  # KB

# Seeded at startup when no job with the same name exists yet.
jobs:
  - name: "daily-summary"
    schedule: "every 24h"
    payload: '{"channel": "general", "type": "summary"}'
  - name: "weekly-report"
    schedule: "at Monday 09:00"
    payload: '{"channel": "reports", "format": "markdown"}'
  - name: "health-check"
    schedule: "cron 0 */6 * * *"
    payload: '{"endpoint": "/health", "timeout": 30}'
    enabled: false
`
