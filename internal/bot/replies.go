package bot

import (
	"fmt"
	"strings"

	"github.com/open-builders/satchat-backend/internal/domain/account"
)

const (
	msgStartFirst     = "Please use /start to create your account first."
	msgTryAgain       = "Something went wrong. Please try again later."
	msgRewardFailed   = "Sorry, your reward could not be credited right now. Please try again later."
	msgLinkFailed     = "Failed to link wallet. Please try again."
	msgClaimFailed    = "Failed to process withdrawal. Please try again later."
	msgNoWallet       = "Please link your Lightning address first using /linkwallet <address>"
	msgZeroBalance    = "You have no sats to claim!"
	msgAdminOnly      = "Only admins can change reward settings."
	msgKeywordFailed  = "Failed to save the keyword. Please try again."
	msgAddKeywordHelp = "Usage: /addkeyword <keyword> <multiplier>\nExample: /addkeyword bitcoin 2.5"
	msgSetCapHelp     = "Usage: /setcap <amount>\nExample: /setcap 21000"
	msgSetCapFailed   = "Failed to update the daily reward cap. Please try again."
)

func welcomeNew(name string) string {
	return fmt.Sprintf("Welcome %s! Your account has been created.\n"+
		"Start chatting to earn rewards!\n\n"+
		"Commands:\n"+
		"/balance - Check your balance\n"+
		"/linkwallet - Link your Lightning address\n"+
		"/claim - Claim your rewards\n"+
		"/help - Show all commands", name)
}

func welcomeBack(name string, balance int64) string {
	return fmt.Sprintf("Welcome back %s! Your balance is %d sats.", name, balance)
}

func balanceText(acc *account.Account) string {
	return fmt.Sprintf("Your current balance is %d sats.\nTotal earned: %d sats\nMessages sent: %d",
		acc.Balance, acc.TotalEarned, acc.MessageCount)
}

func rewardText(amount, balance int64) string {
	return fmt.Sprintf("Rewarded %d sats for your message! Your new balance is %d sats.", amount, balance)
}

func dailyCapText(limit int64) string {
	return fmt.Sprintf("Daily reward cap of %d sats has been reached. No more rewards will be distributed today.", limit)
}

func capTooLowText(minimum int64) string {
	return fmt.Sprintf("Daily reward cap must be at least %d sats.", minimum)
}

func capUpdatedText(limit int64) string {
	return fmt.Sprintf("Daily reward cap has been updated to %d sats.", limit)
}

func linkWalletUsage(example string) string {
	return "Please provide your Lightning address.\n" +
		"Usage: /linkwallet <lightning_address>\n" +
		"Example: /linkwallet " + example
}

func invalidWalletText(example string, domains []string) string {
	return "Invalid Lightning address format. Please provide a valid Lightning address.\n" +
		"Example: " + example + "\n" +
		"Accepted domains: " + strings.Join(domains, ", ")
}

func walletLinkedText(address string) string {
	return fmt.Sprintf("Successfully linked your Lightning address: %s\nYou can now claim your rewards using /claim!", address)
}

func belowMinimumText(minimum, balance int64) string {
	return fmt.Sprintf("Minimum withdrawal amount is %d sats.\nYour current balance: %d sats", minimum, balance)
}

func settlementText(c *account.Claim) string {
	return fmt.Sprintf("Processing withdrawal of %d sats to %s\n\n"+
		"To receive your payment:\n"+
		"1. Open your Lightning wallet\n"+
		"2. Send a payment to: %s\n"+
		"3. Amount: %d sats\n\n"+
		"Claim id: %s\n"+
		"Your balance has been reset to 0. Happy earning!",
		c.Amount, c.WalletAddress, c.WalletAddress, c.Amount, c.ID)
}

type helpInfo struct {
	minWithdrawal int64
	dailyCap      int64
	keywords      int
	isAdmin       bool
}

func helpText(h helpInfo) string {
	var b strings.Builder
	b.WriteString("SatChat rewards you with sats for chatting.\n\n")
	b.WriteString("Commands:\n")
	b.WriteString("/start - Create your account\n")
	b.WriteString("/balance - Check your balance\n")
	b.WriteString("/linkwallet <address> - Link your Lightning address\n")
	b.WriteString("/claim - Claim your rewards\n")
	b.WriteString("/help - Show this message\n")
	if h.isAdmin {
		b.WriteString("/addkeyword <keyword> <multiplier> - Add or update a reward keyword\n")
		b.WriteString("/setcap <amount> - Set the daily reward cap\n")
	}
	b.WriteString("\nSettings:\n")
	fmt.Fprintf(&b, "Minimum withdrawal: %d sats\n", h.minWithdrawal)
	if h.dailyCap > 0 {
		fmt.Fprintf(&b, "Daily reward cap: %d sats\n", h.dailyCap)
	}
	fmt.Fprintf(&b, "Active reward keywords: %d", h.keywords)
	return b.String()
}
