package models

// Setting keys used by the ledger. Values are stored as strings in the
// settings table; the compiled-in default applies when a key is absent.
const (
	SettingWelcomeBonus      = "welcome_bonus"
	SettingReferralEnabled   = "referral_enabled"
	SettingBonusInviter      = "referral_bonus_inviter"
	SettingBonusInvited      = "referral_bonus_invited"
	SettingCommissionPercent = "referral_commission_percent"
	SettingMinPayout         = "referral_min_payout"
	SettingExchangeRate      = "referral_exchange_rate"
)

var DefaultSettings = map[string]string{
	SettingWelcomeBonus:      "3",
	SettingReferralEnabled:   "1",
	SettingBonusInviter:      "2",
	SettingBonusInvited:      "2",
	SettingCommissionPercent: "10",
	SettingMinPayout:         "500",
	SettingExchangeRate:      "29",
}

var DefaultPackages = []Package{
	{Credits: 10, Price: 290, Name: "10 генераций", IsActive: true, SortOrder: 1},
	{Credits: 25, Price: 490, Name: "25 генераций", IsActive: true, SortOrder: 2},
	{Credits: 60, Price: 990, Name: "60 генераций", IsActive: true, SortOrder: 3},
}
