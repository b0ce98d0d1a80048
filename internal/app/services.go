package app

// Services bundles the entry points the chat front-ends call.
type Services struct {
	Birthdays *BirthdayService
	Guilds    *GuildService
	Sweeps    *SweepService
	Clock     Clock
}
