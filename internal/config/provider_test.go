package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hamed0406/miradors/internal/config"
	"github.com/hamed0406/miradors/internal/errs"
)

var knownVars = []string{
	"MIRADORS_CONFIG_FILE",
	"MIRADORS_WEBSITES_TO_CHECK",
	"MIRADORS_CHECK_INTERVAL_IN_SECONDS",
	"MIRADORS_REQUEST_TIMEOUT_IN_SECONDS",
	"MIRADORS_EMAIL_SERVICE_SENDER_EMAIL",
	"MIRADORS_EMAIL_SERVICE_SENDER_DISPLAYED_NAME",
	"MIRADORS_EMAIL_SERVICE_DOMAIN",
	"MIRADORS_EMAIL_SERVICE_API_KEY",
	"MIRADORS_EMAIL_SERVICE_RECIPIENT_EMAIL",
}

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

func setValidEnv() {
	setEnv("MIRADORS_WEBSITES_TO_CHECK", "https://ok.example https://down.example,https://third.example")
	setEnv("MIRADORS_CHECK_INTERVAL_IN_SECONDS", "600")
	setEnv("MIRADORS_EMAIL_SERVICE_SENDER_EMAIL", "monitor@example.com")
	setEnv("MIRADORS_EMAIL_SERVICE_SENDER_DISPLAYED_NAME", "Miradors")
	setEnv("MIRADORS_EMAIL_SERVICE_DOMAIN", "mg.example.com")
	setEnv("MIRADORS_EMAIL_SERVICE_API_KEY", "key-123")
	setEnv("MIRADORS_EMAIL_SERVICE_RECIPIENT_EMAIL", "ops@example.com")
}

const validJSON = `{
  "websites_to_check": "https://a.example https://b.example",
  "check_interval_in_seconds": 30,
  "email_service": {
    "sender_email": "monitor@example.com",
    "sender_displayed_name": "Miradors",
    "domain": "mg.example.com",
    "api_key": "key-abc",
    "recipient_email": "ops@example.com"
  }
}`

const missingAPIKeyJSON = `{
  "websites_to_check": "https://a.example",
  "check_interval_in_seconds": 30,
  "email_service": {
    "sender_email": "monitor@example.com",
    "sender_displayed_name": "Miradors",
    "domain": "mg.example.com",
    "recipient_email": "ops@example.com"
  }
}`

func withInterval(seconds string) string {
	return `{
  "websites_to_check": "https://a.example",
  "check_interval_in_seconds": ` + seconds + `,
  "email_service": {
    "sender_email": "monitor@example.com",
    "sender_displayed_name": "Miradors",
    "domain": "mg.example.com",
    "api_key": "key-abc",
    "recipient_email": "ops@example.com"
  }
}`
}

var _ = Describe("Provider", func() {
	var (
		tempDir  string
		provider *config.Provider
	)

	BeforeEach(func() {
		for _, k := range knownVars {
			os.Unsetenv(k)
		}
		var err error
		tempDir, err = os.MkdirTemp("", "miradors-config-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tempDir)
		provider = config.NewProvider(config.EnvPrefix)
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	Describe("Load from environment", func() {
		It("should build the config from prefixed variables", func() {
			setValidEnv()

			cfg, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Targets).To(Equal([]string{
				"https://ok.example",
				"https://down.example",
				"https://third.example",
			}))
			Expect(cfg.CheckInterval).To(Equal(10 * time.Minute))
			Expect(cfg.RequestTimeout).To(Equal(config.DefaultRequestTimeout))
			Expect(cfg.Notification).To(Equal(config.NotificationConfig{
				SenderAddress:     "monitor@example.com",
				SenderDisplayName: "Miradors",
				RecipientAddress:  "ops@example.com",
				ProviderDomain:    "mg.example.com",
				ProviderAPIKey:    "key-123",
			}))
			Expect(provider.Source()).To(Equal("env:MIRADORS_*"))
		})

		It("should honour an explicit request timeout", func() {
			setValidEnv()
			setEnv("MIRADORS_REQUEST_TIMEOUT_IN_SECONDS", "3")

			cfg, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.RequestTimeout).To(Equal(3 * time.Second))
		})

		It("should fail when a required variable is missing", func() {
			setValidEnv()
			os.Unsetenv("MIRADORS_EMAIL_SERVICE_API_KEY")

			_, err := provider.Load()
			Expect(err).To(HaveOccurred())
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
			Expect(err.Error()).To(ContainSubstring("api_key"))
		})

		It("should fail on a non-numeric interval", func() {
			setValidEnv()
			setEnv("MIRADORS_CHECK_INTERVAL_IN_SECONDS", "ten")

			_, err := provider.Load()
			Expect(err).To(HaveOccurred())
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
		})

		It("should fail on a fractional interval", func() {
			setValidEnv()
			setEnv("MIRADORS_CHECK_INTERVAL_IN_SECONDS", "1.9")

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
		})

		It("should fail on a non-positive interval", func() {
			setValidEnv()
			setEnv("MIRADORS_CHECK_INTERVAL_IN_SECONDS", "-5")

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
		})

		It("should reject targets that are not absolute http URLs", func() {
			setValidEnv()
			setEnv("MIRADORS_WEBSITES_TO_CHECK", "https://ok.example ftp://files.example")

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
			Expect(err.Error()).To(ContainSubstring("targets"))
		})

		It("should fail when no targets are given", func() {
			setValidEnv()
			setEnv("MIRADORS_WEBSITES_TO_CHECK", " , ")

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
		})
	})

	Describe("Load from file", func() {
		It("should load the whole config from the named file", func() {
			path := writeFile("miradors.json", validJSON)
			setEnv("MIRADORS_CONFIG_FILE", path)
			// env form values are ignored when a file is named
			setEnv("MIRADORS_WEBSITES_TO_CHECK", "https://ignored.example")

			cfg, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Targets).To(Equal([]string{"https://a.example", "https://b.example"}))
			Expect(cfg.CheckInterval).To(Equal(30 * time.Second))
			Expect(cfg.Notification.ProviderAPIKey).To(Equal("key-abc"))
			Expect(provider.Source()).To(Equal("file:" + path))
		})

		It("should append a structured targets list", func() {
			path := writeFile("miradors.yaml", `
websites_to_check: "https://a.example"
targets:
  - https://b.example
  - https://c.example
check_interval_in_seconds: 60
request_timeout_in_seconds: 5
email_service:
  sender_email: monitor@example.com
  sender_displayed_name: Miradors
  domain: mg.example.com
  api_key: key-abc
  recipient_email: ops@example.com
`)
			setEnv("MIRADORS_CONFIG_FILE", path)

			cfg, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Targets).To(Equal([]string{"https://a.example", "https://b.example", "https://c.example"}))
			Expect(cfg.RequestTimeout).To(Equal(5 * time.Second))
		})

		It("should fail when api_key is missing", func() {
			setEnv("MIRADORS_CONFIG_FILE", writeFile("miradors.json", missingAPIKeyJSON))

			_, err := provider.Load()
			Expect(err).To(HaveOccurred())
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
			Expect(err.Error()).To(ContainSubstring("api_key"))
		})

		It("should fail when the file does not exist", func() {
			setEnv("MIRADORS_CONFIG_FILE", filepath.Join(tempDir, "absent.json"))

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
		})

		It("should fail when the file is not parseable", func() {
			setEnv("MIRADORS_CONFIG_FILE", writeFile("broken.json", `{"websites_to_check": `))

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
		})

		It("should reject a fractional interval", func() {
			setEnv("MIRADORS_CONFIG_FILE", writeFile("fraction.json", withInterval("1.9")))

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
			Expect(err.Error()).To(ContainSubstring("whole number"))
		})

		It("should reject an interval too large for a duration", func() {
			setEnv("MIRADORS_CONFIG_FILE", writeFile("huge.json", withInterval("99999999999")))

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
			Expect(err.Error()).To(ContainSubstring("no greater than"))
		})

		It("should accept the largest representable interval", func() {
			setEnv("MIRADORS_CONFIG_FILE", writeFile("max.json", withInterval("9223372036")))

			cfg, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.CheckInterval).To(Equal(9223372036 * time.Second))
		})

		It("should reject a fractional request timeout", func() {
			path := writeFile("timeout.yaml", `
websites_to_check: "https://a.example"
check_interval_in_seconds: 60
request_timeout_in_seconds: 2.5
email_service:
  sender_email: monitor@example.com
  sender_displayed_name: Miradors
  domain: mg.example.com
  api_key: key-abc
  recipient_email: ops@example.com
`)
			setEnv("MIRADORS_CONFIG_FILE", path)

			_, err := provider.Load()
			Expect(errs.KindOf(err)).To(Equal(errs.KindConfig))
			Expect(err.Error()).To(ContainSubstring("request_timeout_in_seconds"))
		})

		It("should reflect edits between two loads", func() {
			path := writeFile("miradors.json", validJSON)
			setEnv("MIRADORS_CONFIG_FILE", path)

			first, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Targets).To(HaveLen(2))

			edited := `{
  "websites_to_check": "https://new.example",
  "check_interval_in_seconds": 90,
  "email_service": {
    "sender_email": "monitor@example.com",
    "sender_displayed_name": "Miradors",
    "domain": "mg.example.com",
    "api_key": "key-rotated",
    "recipient_email": "ops@example.com"
  }
}`
			Expect(os.WriteFile(path, []byte(edited), 0o644)).To(Succeed())

			second, err := provider.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Targets).To(Equal([]string{"https://new.example"}))
			Expect(second.CheckInterval).To(Equal(90 * time.Second))
			Expect(second.Notification.ProviderAPIKey).To(Equal("key-rotated"))
		})
	})
})

var _ = Describe("ParseTargets", func() {
	It("should split on spaces and commas and keep duplicates", func() {
		Expect(config.ParseTargets("https://a  https://b,https://a ,")).To(Equal([]string{
			"https://a", "https://b", "https://a",
		}))
	})

	It("should return nothing for blank input", func() {
		Expect(config.ParseTargets("   ")).To(BeEmpty())
	})
})
