// Package reply renders user-facing texts shared by the chat front-ends and
// the console.
package reply

import (
	"fmt"
	"strings"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/domain/birthday"
)

const (
	InvalidDate       = "❌ Invalid date format. Please use MM-DD-YYYY (e.g., 03-15-1990)"
	SaveFailed        = "❌ Failed to save your birthday. Please try again."
	NoBirthday        = "You have not set a birthday yet."
	GuildOnly         = "❌ This command can only be used in a server."
	ChannelFailed     = "❌ Failed to set the announcement channel. Please try again."
	DisableFailed     = "❌ Failed to disable birthday announcements. Please try again."
	Disabled          = "✅ Birthday announcements have been disabled for this server."
	AlreadyDisabled   = "ℹ️ Birthday announcements were already disabled for this server."
	NotConfigured     = "ℹ️ No announcement channel is configured for this server."
	NothingDue        = "ℹ️ No birthdays today."
	InternalError     = "❌ An error occurred while processing your command."
	NeedManageChannel = "❌ You need 'Manage Channels' permission to change birthday announcements."
	NeedGroupAdmin    = "❌ Only group administrators can change birthday announcements."
)

func BirthdaySet(b *birthday.Birthday) string {
	return fmt.Sprintf("✅ Your birthday has been set to %s!", b.FormattedDate())
}

func BirthdayShow(b *birthday.Birthday) string {
	return fmt.Sprintf("🎂 Your birthday is %s.", b.FormattedDate())
}

func ChannelSet(mention string) string {
	return fmt.Sprintf("✅ Birthday announcements will now be sent to %s!", mention)
}

// GuildSweep summarises one guild's sweep for the user who asked for it.
func GuildSweep(r *app.SweepResult) string {
	switch {
	case r.Err != nil, !r.Configured && r.Failed > 0:
		return "❌ An error occurred while sending today's birthday messages."
	case !r.Configured && len(r.Outcomes) == 0:
		return NotConfigured
	case !r.Configured:
		return fmt.Sprintf("%s %d birthday(s) today were not announced.", NotConfigured, len(r.Outcomes))
	case r.NothingDue():
		return NothingDue
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Sent %d birthday message(s) for today.", r.Sent)
	if n := countStatus(r, app.OutcomeSkippedChannelNotFound); n > 0 {
		fmt.Fprintf(&b, "\n⚠️ The announcement channel could not be found (%d message(s) not sent).", n)
	}
	if n := countStatus(r, app.OutcomeFailedDispatch) + countStatus(r, app.OutcomeFailedStore); n > 0 {
		fmt.Fprintf(&b, "\n❌ %d message(s) failed to send.", n)
	}
	return b.String()
}

// DailySweep is the console/CLI summary over all guilds.
func DailySweep(results []*app.SweepResult) string {
	sent, skipped, failed := app.SweepTotals(results)
	var b strings.Builder
	fmt.Fprintf(&b, "Birthday sweep: %d guild(s), %d sent, %d skipped, %d failed", len(results), sent, skipped, failed)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, o := range r.Outcomes {
			fmt.Fprintf(&b, "\n  guild %s user %s: %s", r.GuildID, o.UserID, o.Status)
		}
		if r.Err != nil {
			fmt.Fprintf(&b, "\n  guild %s: %v", r.GuildID, r.Err)
		}
	}
	return b.String()
}

func countStatus(r *app.SweepResult, s app.OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
