package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DunningStepDefault describes one rung of the default reminder ladder
// seeded for new organizations.
type DunningStepDefault struct {
	Trigger    string `mapstructure:"trigger"`
	OffsetDays int    `mapstructure:"offsetDays"`
	Channel    string `mapstructure:"channel"`
	Template   string `mapstructure:"template"`
}

type DunningConfig struct {
	RuleName string               `mapstructure:"ruleName"`
	Timezone string               `mapstructure:"timezone"`
	Steps    []DunningStepDefault `mapstructure:"steps"`
}

const (
	TemplateEmailD5 = `Olá, {{nome}}! 😊
Só um lembrete de que a cobrança **{{descricao}}** no valor de **{{valor}}** vence em **{{vencimento}}**.
Boleto: {{link_boleto}}
Se já estiver tudo certo, pode ignorar esta mensagem. Obrigado!`

	TemplateWhatsAppD1 = `Oi, {{nome}}! Lembrete: **{{descricao}}** ({{valor}}) vence amanhã ({{vencimento}}). Boleto: {{link_boleto}}`

	TemplateSMSD3 = `{{nome}}, a cobrança {{descricao}} ({{valor}}) venceu em {{vencimento}}. Para pagar: {{link_boleto}}`

	TemplateWhatsAppD7 = `Oi, {{nome}}. A cobrança **{{descricao}}** ({{valor}}) segue em aberto desde **{{vencimento}}**. 2ª via: {{link_boleto}}. Se precisar negociar, me avise.`
)

func DefaultDunningConfig() DunningConfig {
	return DunningConfig{
		RuleName: "Régua Padrão",
		Timezone: "America/Sao_Paulo",
		Steps: []DunningStepDefault{
			{Trigger: "BEFORE_DUE", OffsetDays: 5, Channel: "EMAIL", Template: TemplateEmailD5},
			{Trigger: "BEFORE_DUE", OffsetDays: 1, Channel: "WHATSAPP", Template: TemplateWhatsAppD1},
			{Trigger: "AFTER_DUE", OffsetDays: 3, Channel: "SMS", Template: TemplateSMSD3},
			{Trigger: "AFTER_DUE", OffsetDays: 7, Channel: "WHATSAPP", Template: TemplateWhatsAppD7},
		},
	}
}

// DunningConfigHolder holds the current dunning defaults and hot-reloads
// them when the config file changes.
type DunningConfigHolder struct {
	current atomic.Value // holds DunningConfig
}

func NewDunningConfigHolder() (*DunningConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dunning")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/regua/config")
	v.AddConfigPath("/etc/regua")
	v.AddConfigPath(".")

	v.SetEnvPrefix("REGUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg := DefaultDunningConfig()
	if fileFound {
		if err := v.UnmarshalKey("dunning", &cfg); err != nil {
			return nil, err
		}
		if err := validateDunningConfig(cfg); err != nil {
			return nil, err
		}
	}

	holder := &DunningConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated DunningConfig
			if err := v.UnmarshalKey("dunning", &updated); err != nil {
				log.Printf("[dunning-config] reload failed: %v", err)
				return
			}
			if err := validateDunningConfig(updated); err != nil {
				log.Printf("[dunning-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[dunning-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *DunningConfigHolder) Get() DunningConfig {
	return h.current.Load().(DunningConfig)
}

func validateDunningConfig(cfg DunningConfig) error {
	if len(cfg.Steps) == 0 {
		return errors.New("dunning.steps cannot be empty")
	}
	for _, step := range cfg.Steps {
		switch step.Trigger {
		case "BEFORE_DUE", "ON_DUE", "AFTER_DUE":
		default:
			return errors.New("dunning.steps trigger must be BEFORE_DUE, ON_DUE or AFTER_DUE")
		}
		if step.OffsetDays < 0 {
			return errors.New("dunning.steps offsetDays cannot be negative")
		}
	}
	return nil
}
