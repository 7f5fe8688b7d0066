package shipping

import (
	"context"
	"regexp"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

// DefaultRuleID names the rule applied to districts without their own charge.
const DefaultRuleID = "default"

const (
	invalidRuleMsg   = "Please select a district and enter a valid shipping charge."
	fixedDistrictMsg = "The district of a shipping rule cannot be changed."
)

var whitespace = regexp.MustCompile(`\s+`)

func RuleID(district string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(district)), "-")
}

func ruleIDFor(district string) string {
	if district == RestOfCountry {
		return DefaultRuleID
	}
	return RuleID(district)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Rule, error) {
	return s.repo.List(ctx)
}

func (s *Service) Add(ctx context.Context, district string, charge int) (Rule, error) {
	name, ok := canonicalDistrict(district)
	if !ok || charge < 0 {
		return Rule{}, apperr.Invalid(invalidRuleMsg)
	}
	rule := Rule{ID: ruleIDFor(name), District: name, Charge: charge}
	if err := s.repo.Create(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// Update changes a rule's charge. The district is fixed by the rule id, so a
// request naming a different district is rejected.
func (s *Service) Update(ctx context.Context, id, district string, charge int) (Rule, error) {
	name, ok := canonicalDistrict(district)
	if !ok || charge < 0 {
		return Rule{}, apperr.Invalid(invalidRuleMsg)
	}
	if ruleIDFor(name) != id {
		return Rule{}, apperr.Invalid(fixedDistrictMsg)
	}
	rule := Rule{ID: id, District: name, Charge: charge}
	if err := s.repo.Update(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ChargeFor returns the charge for district, falling back to the default rule.
// It returns 0 when neither exists.
func (s *Service) ChargeFor(ctx context.Context, district string) (int, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	district = strings.TrimSpace(district)

	fallback := 0
	for _, r := range rules {
		if district != "" && strings.EqualFold(r.District, district) {
			return r.Charge, nil
		}
		if r.ID == DefaultRuleID {
			fallback = r.Charge
		}
	}
	return fallback, nil
}
