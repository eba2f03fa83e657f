package trending

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"trendwatch-backend/lib/textutil"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type DigestConfig struct {
	Smtp SmtpConfig `json:"smtp"`
	// To lists the digest recipients. Leaving it empty disables the
	// digest entirely.
	To []string `json:"to"`
	// Watchlist marks repositories whose name contains one of these
	// entries, so they stand out in the digest body.
	Watchlist []string `json:"watchlist"`
}

// SendDigest emails the outcome of a scrape to the configured
// recipients. It is a no-op when no recipients are configured.
func SendDigest(ctx context.Context, cfg DigestConfig, result RunResult) error {
	ctx, span := tracer.Start(ctx, "SendDigest")
	defer span.End()

	if len(cfg.To) == 0 {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Trendwatch <%s>", cfg.Smtp.EmailAddress)
	mail.To = cfg.To
	mail.Subject = fmt.Sprintf("Trending repositories for %s", result.TakenAt.Format("2006-01-02"))

	watchlist := make([]string, len(cfg.Watchlist))
	for i, entry := range cfg.Watchlist {
		watchlist[i] = textutil.NormalizeName(entry)
	}
	mail.Text = []byte(digestBody(result, watchlist))

	addr := fmt.Sprintf("%s:%d", cfg.Smtp.Server, cfg.Smtp.Port)
	err := mail.Send(addr, smtp.PlainAuth("", cfg.Smtp.EmailAddress, cfg.Smtp.Password, cfg.Smtp.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		// some internal relays accept mail without authenticating
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send digest email")
		return err
	}

	return nil
}

// digestBody renders the plain-text digest. Watchlist entries must already
// be normalized.
func digestBody(result RunResult, watchlist []string) string {
	var body strings.Builder
	fmt.Fprintf(&body, "The top %d trending repositories on GitHub right now:\n\n", len(result.Repos))
	for i, repo := range result.Repos {
		marker := ""
		if textutil.MatchName(repo.Name, watchlist) {
			marker = " [watched]"
		}
		fmt.Fprintf(&body, "%d. %s%s\n   %s\n\n", i+1, repo.Name, marker, repo.Link)
	}
	fmt.Fprintf(&body, "Run id: %s\n", result.RunID)
	return body.String()
}
