package config

// DefaultLimits are the ceilings assigned to the four limit rows created
// for every new user, in currency minor units. Each can be overridden via
// the environment.
type DefaultLimits struct {
	DailyTransfer      int64
	MonthlyTransfer    int64
	DailyWithdrawals   int64
	MonthlyWithdrawals int64
}

func LoadDefaultLimits() DefaultLimits {
	return DefaultLimits{
		DailyTransfer:      GetInt64Env("LIMIT_DAILY_TRANSFER", 100_000),
		MonthlyTransfer:    GetInt64Env("LIMIT_MONTHLY_TRANSFER", 1_000_000),
		DailyWithdrawals:   GetInt64Env("LIMIT_DAILY_WITHDRAWALS", 50_000),
		MonthlyWithdrawals: GetInt64Env("LIMIT_MONTHLY_WITHDRAWALS", 500_000),
	}
}
