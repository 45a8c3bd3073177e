package erc8004

// IdentityRegistryABI is the subset of the IdentityRegistry interface used for onboarding.
const IdentityRegistryABI = `[
	{"type":"constructor","inputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"REGISTRATION_FEE","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"newAgent","inputs":[{"name":"agentDomain","type":"string"},{"name":"agentAddress","type":"address"}],"outputs":[{"name":"agentId","type":"uint256"}],"stateMutability":"payable"},
	{"type":"function","name":"getAgentCount","inputs":[],"outputs":[{"name":"count","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"resolveByAddress","inputs":[{"name":"agentAddress","type":"address"}],"outputs":[{"name":"agentInfo","type":"tuple","components":[{"name":"agentId","type":"uint256"},{"name":"agentDomain","type":"string"},{"name":"agentAddress","type":"address"}]}],"stateMutability":"view"},
	{"type":"function","name":"resolveByDomain","inputs":[{"name":"agentDomain","type":"string"}],"outputs":[{"name":"agentInfo","type":"tuple","components":[{"name":"agentId","type":"uint256"},{"name":"agentDomain","type":"string"},{"name":"agentAddress","type":"address"}]}],"stateMutability":"view"},
	{"type":"event","name":"AgentRegistered","inputs":[{"name":"agentId","type":"uint256","indexed":true},{"name":"agentDomain","type":"string","indexed":false},{"name":"agentAddress","type":"address","indexed":false}],"anonymous":false}
]`

// ReputationRegistryABI only describes the constructor; the registry is otherwise opaque here.
const ReputationRegistryABI = `[
	{"type":"constructor","inputs":[{"name":"_identityRegistry","type":"address"}],"stateMutability":"nonpayable"}
]`

// ValidationRegistryABI only describes the constructor; the registry is otherwise opaque here.
const ValidationRegistryABI = `[
	{"type":"constructor","inputs":[{"name":"_identityRegistry","type":"address"}],"stateMutability":"nonpayable"}
]`
