package claim

// ChallengeState carries a pending provider challenge between the initial
// authentication attempt and the challenge-response submission. It round
// trips through the HTTP response and request and is never stored
// server-side.
type ChallengeState struct {
	Name       string            `json:"challenge_name"`
	Session    string            `json:"session_token"`
	Username   string            `json:"username"`
	Parameters map[string]string `json:"parameters,omitempty"`
}
