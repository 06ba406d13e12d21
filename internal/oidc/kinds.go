package oidc

// Kinds de entidad que el runtime OAuth/OIDC persiste a través del adapter.
// El set es abierto: el runtime puede definir kinds nuevos y el adapter los
// acepta sin cambios (una sola tabla física particionada por kind).
const (
	KindAccessToken                      = "AccessToken"
	KindAuthorizationCode                = "AuthorizationCode"
	KindRefreshToken                     = "RefreshToken"
	KindClientCredentials                = "ClientCredentials"
	KindDeviceCode                       = "DeviceCode"
	KindBackchannelAuthenticationRequest = "BackchannelAuthenticationRequest"
	KindSession                          = "Session"
	KindInteraction                      = "Interaction"
	KindGrant                            = "Grant"
	KindPushedAuthorizationRequest       = "PushedAuthorizationRequest"
)

// grantableKinds son los kinds ligados a un consent grant: la revocación en
// cascada por grant id (RevokeByGrantID) solo alcanza a estos.
var grantableKinds = []string{
	KindAccessToken,
	KindAuthorizationCode,
	KindBackchannelAuthenticationRequest,
	KindClientCredentials,
	KindDeviceCode,
	KindRefreshToken,
	KindSession,
}

// GrantableKinds retorna una copia del set de kinds revocables por grant.
func GrantableKinds() []string {
	return append([]string(nil), grantableKinds...)
}

func isGrantable(kind string) bool {
	for _, k := range grantableKinds {
		if k == kind {
			return true
		}
	}
	return false
}
