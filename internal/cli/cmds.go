package cli

func regCommands() {
	//Config
	configCmd.AddCommand(config_initCmd)

	//Withdraw
	withdrawCmd.AddCommand(withdraw_resetLimitCmd)

	//Root
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(marketsCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(configCmd)
}
