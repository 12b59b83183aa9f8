package api

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
)

var discordIDPattern = regexp.MustCompile(`^\d{17,19}$`)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("discord_id", func(fl validator.FieldLevel) bool {
			return discordIDPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// fieldMessages maps a failed field and tag onto the message the client sees.
var fieldMessages = map[string]map[string]string{
	"DiscordID": {"required": constants.MsgDiscordIDRequired, "discord_id": constants.MsgInvalidDiscordID},
	"Notes":     {"max": constants.MsgNotesTooLong},
	"Group":     {"min": constants.MsgInvalidGroup, "max": constants.MsgInvalidGroup},
	"Preset":    {"oneof": constants.MsgInvalidPreset},
	"Guild":     {"required": constants.MsgMissingGuild, "max": constants.MsgMissingGuild},
}

// validateStruct runs the struct tags of req and turns the first failure
// into a validation AppError.
func validateStruct(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return common.InvalidWithDetails(constants.MsgInvalidBody, err.Error())
	}

	fe := fieldErrs[0]
	if msg, ok := fieldMessages[fe.Field()][fe.Tag()]; ok {
		return common.Invalid(msg)
	}
	return common.InvalidWithDetails(constants.MsgInvalidBody, fe.Field()+" failed "+fe.Tag())
}

func validDiscordID(id string) bool {
	return discordIDPattern.MatchString(id)
}
