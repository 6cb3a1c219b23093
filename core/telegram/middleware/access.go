package middleware

import tele "gopkg.in/telebot.v4"

// OwnerOptions defines how owner-only checks behave.
type OwnerOptions struct {
	OwnerID  int64
	OnReject tele.HandlerFunc
}

// OwnerOnlyMiddleware ensures that only the bot owner can invoke downstream
// handlers. With a zero OwnerID the check is disabled.
func OwnerOnlyMiddleware(opts OwnerOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if opts.OwnerID != 0 && (sender == nil || sender.ID != opts.OwnerID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
