package token

// Refresher exchanges a live refresh token for a brand-new pair. The consumed
// token is not recorded anywhere: tokens are stateless and there is no
// server-side revocation, so until natural expiry the old refresh token keeps
// working. Known limitation, not an accident.
type Refresher struct {
	verifier *Verifier
	issuer   *Issuer
}

func NewRefresher(cfg Config) *Refresher {
	return &Refresher{
		verifier: NewVerifier(cfg),
		issuer:   NewIssuer(cfg),
	}
}

// Refresh verifies refreshToken as a refresh-type token and issues a new pair
// preserving its subject and extra claims. ErrTokenExpired and
// ErrTokenInvalid pass through unchanged for the caller to map.
func (r *Refresher) Refresh(refreshToken string) (*Pair, error) {
	payload, err := r.verifier.Verify(refreshToken, TypeRefresh)
	if err != nil {
		return nil, err
	}
	return r.issuer.IssuePair(payload.Subject, payload.Extra)
}
