package config

import (
	"os"
	"strconv"
	"time"
)

type Watch struct {
	StreamCmd      string        // command producing the unified log stream
	TriggerKeyword string        // case-insensitive keyword marking a qualifying line
	CooldownWindow time.Duration // per-call suppression window
	RestartBackoff time.Duration // wait before re-acquiring a dead stream
}

type Reply struct {
	Recipient string // fixed recipient for the automated reply
	Template  string // fixed reply body
}

type Automation struct {
	DeclineScript string        // osascript source for declining the call
	RestartScript string        // osascript source for restarting Messages
	Timeout       time.Duration // per-invocation timeout
}

type Sender struct {
	Mode    string        // "script" or "http"
	Script  string        // osascript source for script mode
	URL     string        // send-service endpoint for http mode
	Secret  string        // HMAC secret for http mode request signing
	Timeout time.Duration // per-send timeout
}

type Forward struct {
	MonitorCmd     string        // command emitting inbound messages as JSON lines
	URL            string        // webhook receiving forwarded inbound messages
	Timeout        time.Duration // HTTP client timeout
	RestartBackoff time.Duration // wait before re-acquiring a dead monitor stream
}

type Config struct {
	AppName      string
	HTTPPort     string // :8080
	APIKey       string
	JWTSecret    string // enables HS256 bearer tokens when set
	MaxBodyChars int
	Watch        Watch
	Reply        Reply
	Automation   Automation
	Sender       Sender
	Forward      Forward
}

// restartScript quits FaceTime and kills the helper processes that keep a
// stale call notification alive.
const restartScript = `
set appName to "FaceTime"
tell application appName
    if it is running then quit
end tell
delay 1
do shell script "
  killall 'FaceTime' 2>/dev/null || true;
  killall 'avconferenced' 2>/dev/null || true;
  killall 'CallHistoryPluginHelper' 2>/dev/null || true;
"
`

const declineScript = `
tell application "System Events"
    if exists (window 1 of process "NotificationCenter") then
        tell process "NotificationCenter"
            click button "Decline" of window 1
        end tell
    end if
end tell
`

const defaultStreamCmd = `log stream --predicate 'eventMessage contains "FaceTime"' --info`

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func FromEnv() Config {
	return Config{
		AppName:      getenv("APP_NAME", "msgbridge"),
		HTTPPort:     getenv("HTTP_PORT", ":8080"),
		APIKey:       getenv("API_KEY", "changeme"),
		JWTSecret:    getenv("JWT_SECRET", ""),
		MaxBodyChars: getenvInt("MAX_BODY_CHARS", 10000),
		Watch: Watch{
			StreamCmd:      getenv("LOG_STREAM_CMD", defaultStreamCmd),
			TriggerKeyword: getenv("TRIGGER_KEYWORD", "incoming"),
			CooldownWindow: getenvDuration("COOLDOWN_WINDOW", 10*time.Second),
			RestartBackoff: getenvDuration("WATCH_RESTART_BACKOFF", 5*time.Second),
		},
		Reply: Reply{
			Recipient: getenv("REPLY_RECIPIENT", ""),
			Template:  getenv("REPLY_TEMPLATE", "We missed your call. Please text your order and we will confirm a pick up time. Thank you."),
		},
		Automation: Automation{
			DeclineScript: getenv("DECLINE_SCRIPT", declineScript),
			RestartScript: getenv("RESTART_SCRIPT", restartScript),
			Timeout:       getenvDuration("AUTOMATION_TIMEOUT", 15*time.Second),
		},
		Sender: Sender{
			Mode:    getenv("SENDER_MODE", "script"),
			Script:  getenv("SEND_SCRIPT", ""),
			URL:     getenv("SENDER_URL", "http://localhost:8081/send"),
			Secret:  getenv("SENDER_SECRET", ""),
			Timeout: getenvDuration("SENDER_TIMEOUT", 15*time.Second),
		},
		Forward: Forward{
			MonitorCmd:     getenv("MONITOR_CMD", ""),
			URL:            getenv("FORWARD_URL", ""),
			Timeout:        getenvDuration("FORWARD_TIMEOUT", 10*time.Second),
			RestartBackoff: getenvDuration("MONITOR_RESTART_BACKOFF", 5*time.Second),
		},
	}
}
