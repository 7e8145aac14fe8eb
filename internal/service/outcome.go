package service

// Outcome is the user-facing result of a login or registration attempt.
// The zero value is OutcomeTemporaryFailure so an unset outcome never reads
// as a success.
type Outcome int

const (
	OutcomeTemporaryFailure Outcome = iota
	OutcomeSuccess
	OutcomeBotDetected
	OutcomeSuspiciousTiming
	OutcomeInvalidCredentials
	OutcomeAccountLocked
	OutcomeRegistered
	OutcomeDuplicateUsername
	OutcomeInvalidRegistration
)

var outcomeMessages = map[Outcome]string{
	OutcomeTemporaryFailure:    "Something went wrong. Please try again",
	OutcomeSuccess:             "Login Successful",
	OutcomeBotDetected:         "Bot detected",
	OutcomeSuspiciousTiming:    "Suspicious activity detected",
	OutcomeInvalidCredentials:  "Invalid username or password",
	OutcomeAccountLocked:       "Account locked. Try later",
	OutcomeRegistered:          "User Registered Successfully",
	OutcomeDuplicateUsername:   "Username already exists",
	OutcomeInvalidRegistration: "Username and password are required",
}

var outcomeNames = map[Outcome]string{
	OutcomeTemporaryFailure:    "temporary_failure",
	OutcomeSuccess:             "success",
	OutcomeBotDetected:         "bot_detected",
	OutcomeSuspiciousTiming:    "suspicious_timing",
	OutcomeInvalidCredentials:  "invalid_credentials",
	OutcomeAccountLocked:       "account_locked",
	OutcomeRegistered:          "registered",
	OutcomeDuplicateUsername:   "duplicate_username",
	OutcomeInvalidRegistration: "invalid_registration",
}

// Message is the fixed text shown to the client.
func (o Outcome) Message() string {
	if msg, ok := outcomeMessages[o]; ok {
		return msg
	}
	return outcomeMessages[OutcomeTemporaryFailure]
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}
