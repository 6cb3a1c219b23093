package texts

// Language codes understood by the bot. Anything other than English falls
// back to the default conversational dialect.
const (
	LangEN = "en"
	LangHI = "hinglish"
)

var en = map[string]string{
	"start":              "Bro, write everything in one message and send it 😁",
	"write_again":        "Okay, write again and send in one message.",
	"sent_to_admin":      "Done. Your message has been sent.",
	"lang_choose":        "Choose language / language choose karo:",
	"lang_now_en":        "Language set to English.",
	"lang_now_hi":        "Language set to Hinglish.",
	"admin_new":          "New request received:",
	"admin_reply_prompt": "Write down the reply (it will go to the same user).",
	"admin_reply_sent":   "Reply sent to user.",
	"admin_rejected":     "Rejected and user informed.",
	"cooldown":           "Please wait, cooldown running...",
	"banned":             "You are banned from using this bot.",
}

var hi = map[string]string{
	"start":              "Bro sab ek hi bari me likh ke bhej de 😁",
	"write_again":        "Theek hai, dobara likh ke ek hi message me bhej.",
	"sent_to_admin":      "Done, tumhara message send ho gaya.",
	"lang_choose":        "Choose language / language choose karo:",
	"lang_now_en":        "Language English set ho gayi.",
	"lang_now_hi":        "Language Hinglish set ho gayi.",
	"admin_new":          "New request aayi hai:",
	"admin_reply_prompt": "Reply likho (yeh same user ko jayega).",
	"admin_reply_sent":   "User ko reply bhej diya.",
	"admin_rejected":     "Reject kar diya aur user ko inform kar diya.",
	"cooldown":           "Bhai ruk ja, cooldown chal raha hai...",
	"banned":             "You are banned from using this bot.",
}

// T resolves a display string for the given language. Unknown keys come
// back unchanged so a missing entry stays visible instead of vanishing.
func T(lang, key string) string {
	table := hi
	if lang == LangEN {
		table = en
	}
	if v, ok := table[key]; ok {
		return v
	}
	return key
}
