package domain

// Parameter names accepted by the antiraid command.
const (
	ParamChannelID       = "channelId"
	ParamJoinLimit       = "joinLimit"
	ParamJoinWindow      = "joinWindow"
	ParamMinAccountAge   = "minAccountAge"
	ParamAction          = "action"
	ParamNotifyMessage   = "notifyMessage"
	ParamLockdownMessage = "lockdownMessage"
)

// Raid actions accepted by the action parameter.
const (
	ActionNone = "none"
	ActionKick = "kick"
	ActionBan  = "ban"
)

// Parameter is one entry of the type table.
type Parameter struct {
	Name string
	Kind Kind
}

var parameters = []Parameter{
	{Name: ParamChannelID, Kind: String},
	{Name: ParamJoinLimit, Kind: Int},
	{Name: ParamJoinWindow, Kind: Int},
	{Name: ParamMinAccountAge, Kind: Int},
	{Name: ParamAction, Kind: String},
	{Name: ParamNotifyMessage, Kind: EncodedString},
	{Name: ParamLockdownMessage, Kind: EncodedString},
}

var parameterIndex = func() map[string]Parameter {
	idx := make(map[string]Parameter, len(parameters))
	for _, p := range parameters {
		idx[p.Name] = p
	}
	return idx
}()

// LookupParameter returns the declared parameter for name.
func LookupParameter(name string) (Parameter, bool) {
	p, ok := parameterIndex[name]
	return p, ok
}

// Parameters returns a copy of the type table in declaration order.
func Parameters() []Parameter {
	out := make([]Parameter, len(parameters))
	copy(out, parameters)
	return out
}

// ParameterNames returns every settable parameter name in declaration order.
func ParameterNames() []string {
	names := make([]string, len(parameters))
	for i, p := range parameters {
		names[i] = p.Name
	}
	return names
}
