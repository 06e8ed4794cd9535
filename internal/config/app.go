package config

type AppConfig struct {
	Server  ServerConfig
	Log     LogConfig
	GameAPI GameAPIConfig
	Push    PushConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGameAPI()
	if err != nil {
		return AppConfig{}, err
	}
	pushCfg, err := LoadPush()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:  serverCfg,
		Log:     logCfg,
		GameAPI: gameCfg,
		Push:    pushCfg,
	}, nil
}
