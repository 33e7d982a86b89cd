package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"budget-api/internal/service"
	"budget-api/internal/service/calculate"
)

// rate accepts both quoted and bare numbers in TOML.
type rate struct {
	decimal.Decimal
}

func (r *rate) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return err
		}
		r.Decimal = d
	case float64:
		r.Decimal = decimal.NewFromFloat(x)
	case int64:
		r.Decimal = decimal.NewFromInt(x)
	default:
		return fmt.Errorf("unsupported rate value %v", v)
	}
	return nil
}

// policyFile is the on-disk form of a company policy:
//
//	currency = "BRL"
//	tax_rate = 0.18
//	profit_margin = 0.3
type policyFile struct {
	Currency     string `toml:"currency"`
	TaxRate      rate   `toml:"tax_rate"`
	ProfitMargin rate   `toml:"profit_margin"`
}

// templateFile accepts the category layout and the older flat fields list.
type templateFile struct {
	calculate.Template
	Fields []calculate.Field `json:"fields"`
}

type calcOptions struct {
	templatePath string
	itemsPath    string
	policyPath   string
	taxRate      string
	profitMargin string
}

func newCalcCmd() *cobra.Command {
	var opts calcOptions

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price items against a template file without a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "Template JSON file")
	cmd.Flags().StringVarP(&opts.itemsPath, "items", "i", "", "Items JSON file")
	cmd.Flags().StringVarP(&opts.policyPath, "policy", "p", "", "Policy TOML file")
	cmd.Flags().StringVar(&opts.taxRate, "tax-rate", "", "Tax rate, overrides the policy file")
	cmd.Flags().StringVar(&opts.profitMargin, "profit-margin", "", "Profit margin, overrides the policy file")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func runCalc(cmd *cobra.Command, opts calcOptions) error {
	raw, err := os.ReadFile(opts.templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	var tf templateFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	tpl := tf.Template
	tpl.Categories = service.TemplateInput{Categories: tf.Categories, Fields: tf.Fields}.Tree()

	items, err := os.ReadFile(opts.itemsPath)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}

	var policy policyFile
	if opts.policyPath != "" {
		if _, err := toml.DecodeFile(opts.policyPath, &policy); err != nil {
			return fmt.Errorf("parse policy: %w", err)
		}
	}
	if err := override(&policy.TaxRate, opts.taxRate, "tax-rate"); err != nil {
		return err
	}
	if err := override(&policy.ProfitMargin, opts.profitMargin, "profit-margin"); err != nil {
		return err
	}

	resp, err := calculate.Evaluate(tpl, items, calculate.Policy{
		TaxRate:      policy.TaxRate.Decimal,
		ProfitMargin: policy.ProfitMargin.Decimal,
	})
	if err != nil {
		var ve *calculate.ValidationError
		if errors.As(err, &ve) {
			for _, msg := range ve.Messages() {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
		}
		return err
	}
	resp.Metadata.Currency = policy.Currency

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func override(r *rate, flag, name string) error {
	if flag == "" {
		return nil
	}
	d, err := decimal.NewFromString(flag)
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	r.Decimal = d
	return nil
}
