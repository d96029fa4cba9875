package validation

import "github.com/bitacora-blog/apiserver/types"

func roleNames() []string {
	roles := types.Roles()
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return names
}

// UserCreate guards account registration.
var UserCreate = Ruleset{
	Field("name",
		Must(NotEmpty(), "El nombre es obligatorio"),
		Must(Alpha(), "El nombre solo permite letras"),
		Must(Length(3, 0), "El nombre debe de tener al menos 3 letras"),
	),
	Field("lastname",
		Must(NotEmpty(), "El apellido es obligatorio"),
		Must(Alpha(), "El apellido solo permite letras"),
		Must(Length(3, 0), "El apellido debe de tener al menos 3 letras"),
	),
	Field("email",
		Must(NotEmpty(), "El correo es obligatorio"),
		Must(Email(), "Dirección de correo inválida"),
	),
	Field("password",
		Must(NotEmpty(), "La contraseña es obligatoria"),
		Must(StrongPassword(DefaultPasswordPolicy), "La contraseña no cumple con el mínimo de seguridad"),
	),
	Field("role",
		Must(NotEmpty(), "El rol es obligatorio"),
		Must(OneOf(roleNames()...), "Rol inválido"),
	),
}

// Login guards the credential exchange.
var Login = Ruleset{
	Field("email",
		Must(NotEmpty(), "El correo es obligatorio"),
		Must(Email(), "Dirección de correo inválida"),
	),
	Field("password",
		Must(NotEmpty(), "La contraseña es obligatoria"),
	),
}

// BlogCreate guards blog creation and full updates.
var BlogCreate = Ruleset{
	Field("title",
		Must(NotEmpty(), "El titulo es requerido"),
		Must(AlphanumericSpaces(), "Solo se permiten letras y números en el titulo"),
	),
	Field("subtitle",
		Must(NotEmpty(), "El subtitulo es requerido"),
		Must(AlphanumericSpaces(), "Solo se permiten letras y números en el subtitulo"),
	),
	Field("text",
		Must(NotEmpty(), "El texto del blog es requerido"),
		Must(Length(5, 2000), "El texto debe de contener entre 5 a 2000 caracteres de longitud"),
	),
}
