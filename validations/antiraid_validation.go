package validations

import (
	"context"
	"fmt"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	pkgError "github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var parameterRules = map[string][]validation.Rule{
	domain.ParamChannelID: {
		validation.Required,
		validation.Length(1, 32),
		is.Digit.Error("must be a channel ID made of digits"),
	},
	domain.ParamAction: {
		validation.Required,
		validation.In(domain.ActionNone, domain.ActionKick, domain.ActionBan).
			Error(fmt.Sprintf("must be one of %s, %s or %s", domain.ActionNone, domain.ActionKick, domain.ActionBan)),
	},
}

// ValidateParameterValue checks a coerced value against the extra rules a
// parameter declares. Parameters without rules accept any value of their
// kind.
func ValidateParameterValue(ctx context.Context, parameter string, value any) error {
	rules, ok := parameterRules[parameter]
	if !ok {
		return nil
	}

	if err := validation.ValidateWithContext(ctx, value, rules...); err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
