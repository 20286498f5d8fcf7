package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("maria@example.com"))
	assert.NoError(t, ValidateEmail("  MARIA@Example.COM  "))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("maria"))
	assert.Error(t, ValidateEmail("maria@semdominio"))
	assert.Error(t, ValidateEmail("maria@exemplo@com.br"))
}

func TestValidateLengthCountsRunes(t *testing.T) {
	// Акцентированные символы считаются как один символ.
	assert.NoError(t, ValidateLength("nome", "Jô", 2, 10))
	assert.Error(t, ValidateLength("nome", "J", 2, 10))
	assert.Error(t, ValidateLength("nome", "nome muito longo", 2, 10))
}

func TestValidatePetEnums(t *testing.T) {
	assert.NoError(t, ValidatePetSex("MACHO"))
	assert.NoError(t, ValidatePetSex("FEMEA"))
	assert.Error(t, ValidatePetSex("macho"))

	assert.NoError(t, ValidatePetSize("PEQUENO"))
	assert.NoError(t, ValidatePetSize("MEDIO"))
	assert.NoError(t, ValidatePetSize("GRANDE"))
	assert.Error(t, ValidatePetSize("GIGANTE"))

	assert.NoError(t, ValidateInteractionType("FAVORITED"))
	assert.NoError(t, ValidateInteractionType("DISCARDED"))
	assert.Error(t, ValidateInteractionType("LIKED"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Senha123"))

	assert.Error(t, ValidatePassword("curta1A"))
	assert.Error(t, ValidatePassword("semnumeros"))
	assert.Error(t, ValidatePassword("SEMMINUSCULA1"))
	assert.Error(t, ValidatePassword("semmaiuscula1"))
}
