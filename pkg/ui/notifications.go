package ui

import (
	"fmt"
	"html"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// NotificationSender delivers one desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender uses notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=boardharvest", title, message).Run()
}

// MacOSNotificationSender uses osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		appleScriptEscape(message), appleScriptEscape(title))
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender shows a toast through PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
$doc.LoadXml('<toast><visual><binding template="ToastText02"><text id="1">%s</text><text id="2">%s</text></binding></visual></toast>')
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("boardharvest").Show([Windows.UI.Notifications.ToastNotification]::new($doc))
`, powershellEscape(html.EscapeString(title)), powershellEscape(html.EscapeString(message)))
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func powershellEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Notifier prints run outcomes and mirrors them to the desktop when enabled
type Notifier struct {
	sender     NotificationSender
	out        io.Writer
	onComplete bool
	onError    bool
}

// NewNotifier picks the platform sender. With enabled false only the
// console line is printed.
func NewNotifier(enabled, onComplete, onError bool) *Notifier {
	n := &Notifier{out: os.Stdout, onComplete: onComplete, onError: onError}
	if !enabled {
		return n
	}

	switch runtime.GOOS {
	case "linux":
		n.sender = &LinuxNotificationSender{}
	case "darwin":
		n.sender = &MacOSNotificationSender{}
	case "windows":
		n.sender = &WindowsNotificationSender{}
	}
	return n
}

// NewNotifierWithSender builds a notifier around an explicit sender
func NewNotifierWithSender(sender NotificationSender, out io.Writer) *Notifier {
	return &Notifier{sender: sender, out: out, onComplete: true, onError: true}
}

// Complete reports a finished run
func (n *Notifier) Complete(board string, saved, total int) {
	title := "Board downloaded"
	message := fmt.Sprintf("%s: saved %d of %d", board, saved, total)
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), message)

	if n.sender != nil && n.onComplete {
		// notifications are best effort
		_ = n.sender.Send(title, message)
	}
}

// Failed reports a run that ended with an error
func (n *Notifier) Failed(board string, err error) {
	title := "Board download failed"
	message := fmt.Sprintf("%s: %v", board, err)
	fmt.Fprintf(n.out, "\n%s: %s\n", Red(title), Red(message))

	if n.sender != nil && n.onError {
		_ = n.sender.Send(title, message)
	}
}
