package heuristics

import "regexp"

// DefaultDisposableDomains lists known throwaway mailbox providers.
var DefaultDisposableDomains = []string{
	"10minutemail.com", "10minutemail.net", "10minutemail.org",

	"tempmail.com", "tempmail.org", "tempmail.io", "tempmail.co", "tempmail.us", "tempmail.ws",
	"temp-mail.org", "temp-mail.io", "temp-mail.com", "temp-mail.net", "temp-mail.ru", "temp-mail.us", "temp-mail.ws",
	"tmpmail.org", "tmpmail.net", "tmpmail.ru", "tmpmail.us", "tmpmail.ws", "tmpmailer.com",

	"guerrillamail.com", "guerrillamail.net", "guerrillamail.org", "guerrillamail.biz", "guerrillamail.info",

	"mailinator.com", "mailinator.net", "mailinator.org",

	"throwaway.email", "throwawaymail.com", "throwawaymail.net", "throwawaymail.org",

	"yopmail.com", "yopmail.net", "yopmail.org",

	"getnada.com", "mohmal.com", "fakeinbox.com", "fakemail.net", "fakemail.com", "fakemailgenerator.com",
	"maildrop.cc", "mintemail.com", "mytemp.email", "sharklasers.com", "spamgourmet.com",
	"trashmail.com", "trashmail.net", "mail-temp.com", "emailondeck.com", "getairmail.com",
	"inboxkitten.com", "meltmail.com", "mox.do", "nada.email", "spamhole.com", "tempr.email",
	"tempinbox.co.uk", "tempinbox.com", "tempinbox.xyz", "tempail.com", "tempalias.com",
	"tempe-mail.com", "tmail.ws",
}

// DefaultSpamPatterns returns the built-in spam expressions: pharmacy and
// gambling offers, urgency bait, inheritance scams. Input is lowercased
// before matching.
func DefaultSpamPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`\b(viagra|cialis|poker|casino|lottery|winner|prize|free money)\b`),
		regexp.MustCompile(`\b(click here|buy now|limited time|act now|urgent)\b`),
		regexp.MustCompile(`\b(nigerian prince|inheritance|lottery winner)\b`),
	}
}
