package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hamed0406/miradors/internal/config"
)

var _ = Describe("Settings", func() {
	BeforeEach(func() {
		for _, k := range []string{
			"MIRADORS_LOG_DIR",
			"MIRADORS_LOG_LEVEL",
			"MIRADORS_STATUS_ADDR",
			"MIRADORS_STATUS_API_KEYS",
			"MIRADORS_ON_CONFIG_ERROR",
			"MIRADORS_CONFIG_RETRY_SECONDS",
			"MIRADORS_MAILGUN_API_BASE",
		} {
			os.Unsetenv(k)
		}
	})

	It("should apply defaults", func() {
		s := config.SettingsFromEnv()
		Expect(s.LogLevel).To(Equal(config.LogLevelInfo))
		Expect(s.OnConfigError).To(Equal(config.PolicyExit))
		Expect(s.ConfigRetryInterval).To(Equal(time.Minute))
		Expect(s.StatusAddr).To(BeEmpty())
		Expect(s.Validate()).To(Succeed())
	})

	It("should parse overrides", func() {
		setEnv("MIRADORS_LOG_DIR", "./_testlogs")
		setEnv("MIRADORS_LOG_LEVEL", "DEBUG")
		setEnv("MIRADORS_STATUS_ADDR", "127.0.0.1:9090")
		setEnv("MIRADORS_STATUS_API_KEYS", "k1, k2,")
		setEnv("MIRADORS_ON_CONFIG_ERROR", "retry")
		setEnv("MIRADORS_CONFIG_RETRY_SECONDS", "15")
		setEnv("MIRADORS_MAILGUN_API_BASE", "https://api.eu.mailgun.net/v3")

		s := config.SettingsFromEnv()
		Expect(s.LogDir).To(Equal("./_testlogs"))
		Expect(s.LogLevel).To(Equal(config.LogLevelDebug))
		Expect(s.StatusAddr).To(Equal("127.0.0.1:9090"))
		Expect(s.StatusAPIKeys).To(Equal([]string{"k1", "k2"}))
		Expect(s.OnConfigError).To(Equal(config.PolicyRetry))
		Expect(s.ConfigRetryInterval).To(Equal(15 * time.Second))
		Expect(s.MailgunAPIBase).To(Equal("https://api.eu.mailgun.net/v3"))
		Expect(s.Validate()).To(Succeed())
	})

	It("should reject an unknown policy", func() {
		setEnv("MIRADORS_ON_CONFIG_ERROR", "ignore")
		Expect(config.SettingsFromEnv().Validate()).NotTo(Succeed())
	})

	It("should reject a malformed status address", func() {
		setEnv("MIRADORS_STATUS_ADDR", "not-an-addr")
		Expect(config.SettingsFromEnv().Validate()).NotTo(Succeed())
	})
})
