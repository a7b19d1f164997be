package conf

type Bootstrap struct {
	Server *Server
	Radar  *Radar
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

// Radar 分析引擎配置，Config 指向引擎自己的 YAML 文件
type Radar struct {
	Config string `json:"config"`
}
